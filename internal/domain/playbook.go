package domain

// Playbooks are the churn/retention automations configured per project.

type PlaybookStatus string

const (
	PlaybookActive   PlaybookStatus = "active"
	PlaybookPaused   PlaybookStatus = "paused"
	PlaybookArchived PlaybookStatus = "archived"
)

type Playbook struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Status      PlaybookStatus `json:"status"`
	Trigger     string         `json:"trigger,omitempty"`
	Description string         `json:"description,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
}
