package common

const (
	// APIKeyHeaderName carries the project's public API key on every backend request.
	APIKeyHeaderName = "apikey"

	// SessionPreferenceKey is the preference key holding the persisted backend session.
	SessionPreferenceKey = "auth.session"
)
