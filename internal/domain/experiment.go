package domain

type ExperimentStatus string

const (
	ExperimentDraft     ExperimentStatus = "draft"
	ExperimentRunning   ExperimentStatus = "running"
	ExperimentPaused    ExperimentStatus = "paused"
	ExperimentCompleted ExperimentStatus = "completed"
)

type Experiment struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Status      ExperimentStatus `json:"status"`
	Variants    []Variant        `json:"variants,omitempty"`
	CreatedAt   string           `json:"created_at,omitempty"`
}

type Variant struct {
	Key            string  `json:"key"`
	Name           string  `json:"name"`
	TrafficPercent float64 `json:"traffic_percent"`
	Conversions    int64   `json:"conversions,omitempty"`
	Exposures      int64   `json:"exposures,omitempty"`
}
