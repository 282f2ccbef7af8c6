package models

// StoredResponse is an entry of the idempotency store. While the first
// request carrying a key is running the entry is Pending and holds only the
// request fingerprint; afterwards it holds the captured response.
type StoredResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}
