package models

// TokenPair is issued at registration, login, and refresh: a short-lived
// signed access token validated statelessly, and a longer-lived opaque
// refresh token tracked server-side so it can be rotated and revoked.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
