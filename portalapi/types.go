package portalapi

import "time"

// TokenResponse is the token endpoint answer. ExpiresIn is in milliseconds.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Lifetime converts ExpiresIn to a duration
func (t TokenResponse) Lifetime() time.Duration {
	return time.Duration(t.ExpiresIn) * time.Millisecond
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// errorBody covers the message shapes the backend uses for failures
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
