// Package auth provides Panther API token authentication.
package auth

import "net/http"

// Credentials holds a Panther API token. A single Credentials value is
// shared by the REST and GraphQL transports so that a token rotation takes
// effect everywhere at once.
type Credentials struct {
	APIToken string
}

// Apply adds the authentication header to an HTTP request.
func (c *Credentials) Apply(req *http.Request) {
	if c == nil {
		return
	}
	req.Header.Set("X-API-Key", c.APIToken)
}

// SetToken replaces the API token. Used after a token rotation; the backend
// keeps the old token valid for a few seconds after rotating.
func (c *Credentials) SetToken(token string) {
	c.APIToken = token
}

// Valid reports whether credentials are configured.
func (c *Credentials) Valid() bool {
	return c != nil && c.APIToken != ""
}
