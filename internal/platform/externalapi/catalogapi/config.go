// Package catalogapi provides a client for a remote catalog service that
// publishes the security listing and the industry/theme hierarchy over HTTP.
package catalogapi

import "time"

// Config holds configuration for the remote catalog client.
type Config struct {
	BaseURL    string        // e.g. "https://catalog.internal.example"
	APIKey     string        // sent as X-API-Key when set
	PageSize   int           // securities per request
	RateLimit  int           // requests per second, 0 disables limiting
	RetryCount int           // retries on network errors and 5xx
	Timeout    time.Duration // HTTP request timeout
}

const (
	defaultPageSize = 500
	maxPages        = 10000
)
