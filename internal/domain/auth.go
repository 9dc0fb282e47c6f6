package domain

// ParentLoginRequest carries the parent PIN.
type ParentLoginRequest struct {
	Pin string `json:"pin"`
}

// ParentLoginResponse returns the short-lived parent access token.
type ParentLoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}
