package domain

// Session is the authentication state of the running client. Exactly one
// exists; it is created on login, mutated on refresh and destroyed on logout
// or an irrecoverable authentication failure.
type Session struct {
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
}

// TokenPair is what the auth endpoints return.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TenantSelection holds the active project and an optional impersonation
// override. When ImpersonatedProjectID is set it wins over
// SelectedProjectID for every data-fetching operation.
type TenantSelection struct {
	SelectedProjectID       string
	ImpersonatedProjectID   string
	ImpersonatedProjectName string
	ImpersonatedUserEmail   string
}

// EffectiveProjectID returns the project id every fetch must be scoped to.
func (t TenantSelection) EffectiveProjectID() string {
	if t.ImpersonatedProjectID != "" {
		return t.ImpersonatedProjectID
	}
	return t.SelectedProjectID
}

func (t TenantSelection) Impersonating() bool { return t.ImpersonatedProjectID != "" }
