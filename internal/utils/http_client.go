package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

const clientUserAgent = "trip-keeper-client"

// HTTPClient is the resty client the sync adapter talks to the server with.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client bound to baseURL that expects JSON and
// gives up on a request after timeout. A zero timeout means no limit.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", clientUserAgent)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &HTTPClient{Client: client}
}
