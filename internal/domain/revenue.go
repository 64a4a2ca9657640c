package domain

// RevenueReport mirrors the Stripe-backed reporting endpoint. All figures
// are computed by the backend; the client only displays them.
type RevenueReport struct {
	ProjectID       ProjectID `json:"project_id"`
	MRRCents        int64     `json:"mrr_cents"`
	ARRCents        int64     `json:"arr_cents"`
	ChurnPercent    float64   `json:"churn_percent"`
	ActiveCustomers int64     `json:"active_customers"`
	NewCustomers    int64     `json:"new_customers"`
	Currency        string    `json:"currency,omitempty"`
}
