package models

// Response is the envelope of every sync endpoint except migrate. Exactly
// one of Data or Message is normally set.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// MigrationResponse is the envelope of the migrate endpoint.
type MigrationResponse struct {
	Success bool `json:"success"`
	MigrationResult
}
