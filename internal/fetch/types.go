package fetch

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Mechanism identifies one authentication scheme tried against an origin.
type Mechanism int

const (
	// MechanismAnonymous sends the request without credentials.
	MechanismAnonymous Mechanism = iota
	// MechanismNegotiate performs SPNEGO negotiation via the Negotiate header.
	MechanismNegotiate
	// MechanismKerberos requires an affirmed Kerberos credential before sending.
	MechanismKerberos
	// MechanismNTLM performs the NTLM challenge/response handshake.
	MechanismNTLM
)

// String makes Mechanism satisfy the fmt.Stringer interface.
func (m Mechanism) String() string {
	switch m {
	case MechanismAnonymous:
		return "anonymous"
	case MechanismNegotiate:
		return "negotiate"
	case MechanismKerberos:
		return "kerberos"
	case MechanismNTLM:
		return "ntlm"
	default:
		return "unknown"
	}
}

// ParseMechanism converts the configuration string form of a mechanism.
func ParseMechanism(s string) (Mechanism, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anonymous", "none":
		return MechanismAnonymous, nil
	case "negotiate":
		return MechanismNegotiate, nil
	case "kerberos":
		return MechanismKerberos, nil
	case "ntlm":
		return MechanismNTLM, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMechanism, s)
	}
}

// ParseMechanisms converts an ordered configuration list.
func ParseMechanisms(names []string) ([]Mechanism, error) {
	mechanisms := make([]Mechanism, 0, len(names))
	for _, name := range names {
		m, err := ParseMechanism(name)
		if err != nil {
			return nil, err
		}
		mechanisms = append(mechanisms, m)
	}
	return mechanisms, nil
}

// Outcome classifies the result of one mechanism attempt.
type Outcome int

const (
	// OutcomeSuccess means the origin answered with a 2xx/3xx status.
	OutcomeSuccess Outcome = iota
	// OutcomeAuthRejected means the origin answered 401 or 403; the next
	// mechanism in order is tried.
	OutcomeAuthRejected
	// OutcomeHTTPError means the origin answered with a non-auth error
	// status (404, 500, ...). On the anonymous mechanism this is the
	// origin's final answer; on authenticated mechanisms the next one in
	// order is still tried.
	OutcomeHTTPError
	// OutcomeTransportError means the request never produced a response
	// (DNS, connection, TLS, timeout); the negotiation stops.
	OutcomeTransportError
)

// String makes Outcome satisfy the fmt.Stringer interface.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAuthRejected:
		return "auth-rejected"
	case OutcomeHTTPError:
		return "http-error"
	case OutcomeTransportError:
		return "transport-error"
	default:
		return "unknown"
	}
}

// Request describes one fetch invocation. It is created per call, never
// mutated, and discarded when the call completes.
type Request struct {
	URL     string
	Method  string            // defaults to GET when empty
	Headers map[string]string // optional caller-supplied headers
	Body    []byte            // optional request body
}

// Validate checks the request before any network I/O happens. A failure here
// is an invalid-request error, not a fetch attempt.
func (r Request) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidRequest, r.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidRequest, u.Scheme)
	}
	if r.Method != "" {
		// Method tokens per RFC 9110; http.NewRequest rejects the rest later,
		// but catching it here keeps it classified as invalid-request.
		if strings.ContainsAny(r.Method, " \t\r\n") {
			return fmt.Errorf("%w: invalid method %q", ErrInvalidRequest, r.Method)
		}
	}
	return nil
}

// method returns the effective HTTP method.
func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// Attempt records the outcome of one mechanism during a single fetch call.
type Attempt struct {
	Mechanism Mechanism
	Status    int // zero when no response was received
	Outcome   Outcome
	Err       error // transport detail, nil for HTTP-level outcomes
}

// String renders the attempt for diagnostics.
func (a Attempt) String() string {
	switch a.Outcome {
	case OutcomeSuccess:
		return fmt.Sprintf("%s: HTTP %d", a.Mechanism, a.Status)
	case OutcomeAuthRejected:
		if a.Status == 0 && a.Err != nil {
			return fmt.Sprintf("%s: %v", a.Mechanism, a.Err)
		}
		return fmt.Sprintf("%s: rejected with HTTP %d", a.Mechanism, a.Status)
	case OutcomeHTTPError:
		return fmt.Sprintf("%s: HTTP %d", a.Mechanism, a.Status)
	case OutcomeTransportError:
		return fmt.Sprintf("%s: %v", a.Mechanism, a.Err)
	default:
		return fmt.Sprintf("%s: unknown outcome", a.Mechanism)
	}
}

// Result is the terminal outcome of one fetch call. When OK is true, Body,
// ContentType, Status, and Mechanism describe the winning response; in every
// case Attempts carries each mechanism tried, in order.
type Result struct {
	OK          bool
	Body        []byte
	ContentType string
	Status      int
	Mechanism   Mechanism
	Truncated   bool
	Attempts    []Attempt
}
