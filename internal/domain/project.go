package domain

type ProjectID = string

type Project struct {
	ID        ProjectID `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	CreatedAt string    `json:"created_at,omitempty"`
}

type APIKey struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Prefix    string `json:"prefix,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	LastUsed  string `json:"last_used,omitempty"`
}

// DateRange is the half-open query window sent to every analytics-style
// endpoint, ISO dates as the backend expects them.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
