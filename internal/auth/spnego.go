package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"authfetch/internal/fetch"

	krbclient "github.com/jcmturner/gokrb5/v8/client"
	krbconfig "github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/credentials"
	"github.com/jcmturner/gokrb5/v8/spnego"
)

// SPNEGO authenticates with a Kerberos ticket carried in a Negotiate header.
// It backs both the "negotiate" and "kerberos" mechanisms: negotiate is
// opportunistic, kerberos additionally requires the client credential to be
// affirmed before the request is sent.
type SPNEGO struct {
	mechanism fetch.Mechanism
	cfg       Config
}

// NewSPNEGO creates the provider for one of the two Kerberos-backed
// mechanisms.
func NewSPNEGO(mechanism fetch.Mechanism, cfg Config) *SPNEGO {
	return &SPNEGO{mechanism: mechanism, cfg: cfg}
}

// Mechanism identifies this provider.
func (s *SPNEGO) Mechanism() fetch.Mechanism {
	return s.mechanism
}

// Available reports whether the Kerberos client environment exists at all: a
// krb5 configuration and a credential cache for the process identity.
func (s *SPNEGO) Available() bool {
	if _, err := os.Stat(s.cfg.Krb5Conf); err != nil {
		return false
	}
	if _, err := os.Stat(ccachePath()); err != nil {
		return false
	}
	return true
}

// Transport builds a round tripper that attaches a fresh SPNEGO token per
// request, using the login session's credential cache.
func (s *SPNEGO) Transport() (http.RoundTripper, error) {
	conf, err := krbconfig.Load(s.cfg.Krb5Conf)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %v", fetch.ErrCredential, s.cfg.Krb5Conf, err)
	}

	ccache, err := credentials.LoadCCache(ccachePath())
	if err != nil {
		return nil, fmt.Errorf("%w: loading credential cache: %v", fetch.ErrCredential, err)
	}

	cl, err := krbclient.NewFromCCache(ccache, conf, krbclient.DisablePAFXFAST(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrCredential, err)
	}

	if s.mechanism == fetch.MechanismKerberos {
		// Strict variant: the credential must be provably valid before
		// the origin sees anything.
		if err := cl.AffirmLogin(); err != nil {
			return nil, fmt.Errorf("%w: kerberos login not affirmed: %v", fetch.ErrCredential, err)
		}
	}

	return &spnegoTransport{next: baseTransport(s.cfg), client: cl, spn: s.cfg.SPN}, nil
}

// spnegoTransport sets the Negotiate header on each request. Token
// acquisition failures are credential errors, not transport faults, so the
// negotiator can move on to the next mechanism.
type spnegoTransport struct {
	next   http.RoundTripper
	client *krbclient.Client
	spn    string
}

func (t *spnegoTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if err := spnego.SetSPNEGOHeader(t.client, r, t.spn); err != nil {
		return nil, fmt.Errorf("%w: acquiring SPNEGO token: %v", fetch.ErrCredential, err)
	}
	return t.next.RoundTrip(r)
}

// ccachePath resolves the Kerberos credential cache for the process identity.
func ccachePath() string {
	if v, ok := lookupEnv("KRB5CCNAME"); ok && v != "" {
		return strings.TrimPrefix(v, "FILE:")
	}
	return fmt.Sprintf("/tmp/krb5cc_%d", os.Getuid())
}
