package auth

import (
	"net/http"

	"authfetch/internal/fetch"
)

// Anonymous sends requests without any credentials. Placed first in the
// default order so origins that do not challenge are served with a single
// round trip.
type Anonymous struct {
	cfg Config
}

// NewAnonymous creates the unauthenticated provider.
func NewAnonymous(cfg Config) *Anonymous {
	return &Anonymous{cfg: cfg}
}

// Mechanism identifies this provider.
func (a *Anonymous) Mechanism() fetch.Mechanism {
	return fetch.MechanismAnonymous
}

// Available always holds; sending nothing needs nothing.
func (a *Anonymous) Available() bool {
	return true
}

// Transport returns a plain transport.
func (a *Anonymous) Transport() (http.RoundTripper, error) {
	return baseTransport(a.cfg), nil
}
