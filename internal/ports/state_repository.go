package ports

import "context"

// ClientState is what survives a restart: the authenticated flag, the last
// project selection and any impersonation override. Tokens live in the
// secret store, cached data is rebuilt per run.
type ClientState struct {
	IsAuthenticated         bool
	SelectedProjectID       string
	ImpersonatedProjectID   string
	ImpersonatedProjectName string
	ImpersonatedUserEmail   string
}

type StateRepository interface {
	Load(ctx context.Context) (ClientState, error)
	Save(ctx context.Context, state ClientState) error
}
