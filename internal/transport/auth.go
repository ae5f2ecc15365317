package transport

import "net/http"

// Authenticator applies credentials to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth leaves requests unauthenticated. Public feeds use it.
type NoAuth struct{}

// Apply implements Authenticator.
func (NoAuth) Apply(*http.Request) {}

// BearerAuth sends a bearer token in the Authorization header. The admin
// message feed uses it.
type BearerAuth struct {
	Token string
}

// Apply implements Authenticator.
func (b BearerAuth) Apply(req *http.Request) {
	if b.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.Token)
	}
}

// HeaderAuth sends a credential in an arbitrary header.
type HeaderAuth struct {
	Header string
	Value  string
}

// Apply implements Authenticator.
func (h HeaderAuth) Apply(req *http.Request) {
	if h.Header != "" && h.Value != "" {
		req.Header.Set(h.Header, h.Value)
	}
}
