package auth

import (
	"net/http"

	"authfetch/internal/fetch"

	"github.com/Azure/go-ntlmssp"
)

// Environment variables consulted for the NTLM identity. USERDOMAIN and
// USERNAME are what the platform sets for a logged-in domain session; the
// password variable covers environments without single sign-on.
const (
	envUserDomain   = "USERDOMAIN"
	envUserName     = "USERNAME"
	envNTLMPassword = "AUTHFETCH_NTLM_PASSWORD"
)

// NTLM performs the NTLM challenge/response handshake with the identity of
// the current login session (DOMAIN\user, empty password for SSO).
type NTLM struct {
	cfg      Config
	domain   string
	username string
	password string
}

// NewNTLM creates the NTLM provider from the process environment.
func NewNTLM(cfg Config) *NTLM {
	n := &NTLM{cfg: cfg}
	n.domain, _ = lookupEnv(envUserDomain)
	n.username, _ = lookupEnv(envUserName)
	n.password, _ = lookupEnv(envNTLMPassword)
	return n
}

// Mechanism identifies this provider.
func (n *NTLM) Mechanism() fetch.Mechanism {
	return fetch.MechanismNTLM
}

// Available reports whether a domain identity is present in the environment.
func (n *NTLM) Available() bool {
	return n.domain != "" && n.username != ""
}

// Transport returns the NTLM negotiating round tripper. The credential
// injector sits outside the negotiator because go-ntlmssp picks the identity
// up from the request's basic auth header.
func (n *NTLM) Transport() (http.RoundTripper, error) {
	negotiator := ntlmssp.Negotiator{RoundTripper: baseTransport(n.cfg)}
	return &ntlmCredentialTransport{
		next:     negotiator,
		username: n.domain + `\` + n.username,
		password: n.password,
	}, nil
}

// ntlmCredentialTransport injects the DOMAIN\user identity into each request
// before the NTLM handshake runs.
type ntlmCredentialTransport struct {
	next     http.RoundTripper
	username string
	password string
}

func (t *ntlmCredentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(t.username, t.password)
	return t.next.RoundTrip(r)
}
