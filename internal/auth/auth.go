package auth

import (
	"crypto/tls"
	"net/http"
	"os"

	"authfetch/internal/fetch"

	"github.com/hashicorp/go-cleanhttp"
)

// For mocking in tests
var lookupEnv = os.LookupEnv

// Config describes how the process identity resolves credentials.
type Config struct {
	// SPN overrides the Kerberos service principal; empty derives it from
	// the target host.
	SPN string
	// Krb5Conf is the path to the Kerberos client configuration.
	Krb5Conf string
	// InsecureSkipVerify disables TLS verification on the base transport.
	InsecureSkipVerify bool
}

// NewAuthenticators builds one provider per mechanism in the configured
// order. Providers whose credentials cannot be resolved still appear in the
// list; they report Available() == false and the negotiator skips them.
func NewAuthenticators(order []fetch.Mechanism, cfg Config) []fetch.Authenticator {
	authenticators := make([]fetch.Authenticator, 0, len(order))
	for _, mechanism := range order {
		switch mechanism {
		case fetch.MechanismAnonymous:
			authenticators = append(authenticators, NewAnonymous(cfg))
		case fetch.MechanismNTLM:
			authenticators = append(authenticators, NewNTLM(cfg))
		case fetch.MechanismNegotiate, fetch.MechanismKerberos:
			authenticators = append(authenticators, NewSPNEGO(mechanism, cfg))
		}
	}
	return authenticators
}

// baseTransport returns a fresh transport for one attempt. Transports are
// never shared between attempts or calls, so no negotiated connection state
// from one mechanism can leak into another.
func baseTransport(cfg Config) *http.Transport {
	transport := cleanhttp.DefaultTransport()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return transport
}
