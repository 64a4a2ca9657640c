package domain

// Analytics payloads are defined by the backend; the client treats them as
// plain data, sanitizes string fields and mirrors them into its caches.

type AnalyticsSummary struct {
	ProjectID      ProjectID        `json:"project_id"`
	Visitors       int64            `json:"visitors"`
	PageViews      int64            `json:"page_views"`
	BounceRate     float64          `json:"bounce_rate"`
	AvgSessionSecs float64          `json:"avg_session_secs"`
	TopPages       []PageStat       `json:"top_pages,omitempty"`
	TopReferrers   []ReferrerStat   `json:"top_referrers,omitempty"`
	Series         []TimeSeriesStat `json:"series,omitempty"`
}

type PageStat struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

type ReferrerStat struct {
	Source   string `json:"source"`
	Visitors int64  `json:"visitors"`
}

type TimeSeriesStat struct {
	Date     string `json:"date"`
	Visitors int64  `json:"visitors"`
	Events   int64  `json:"events"`
}

type EventSummary struct {
	Name      string `json:"name"`
	Count     int64  `json:"count"`
	UniqueBy  int64  `json:"unique_by,omitempty"`
	LastSeen  string `json:"last_seen,omitempty"`
	FirstSeen string `json:"first_seen,omitempty"`
}

// RecordingSession is a captured end-user session (replay metadata only).
type RecordingSession struct {
	ID           string `json:"id"`
	VisitorID    string `json:"visitor_id"`
	StartedAt    string `json:"started_at"`
	DurationSecs int64  `json:"duration_secs"`
	PageCount    int64  `json:"page_count"`
	Country      string `json:"country,omitempty"`
	EntryPage    string `json:"entry_page,omitempty"`
}
