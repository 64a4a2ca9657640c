package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version       int                 `toml:"version"`
	Session       sessionSchema       `toml:"session"`
	Impersonation impersonationSchema `toml:"impersonation,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported state schema version %d (current %d)", s.Version, currentSchemaVersion)
	}
	return nil
}

type sessionSchema struct {
	IsAuthenticated   bool   `toml:"is_authenticated"`
	SelectedProjectID string `toml:"selected_project_id,omitempty"`
}

type impersonationSchema struct {
	ProjectID   string `toml:"project_id,omitempty"`
	ProjectName string `toml:"project_name,omitempty"`
	UserEmail   string `toml:"user_email,omitempty"`
}
