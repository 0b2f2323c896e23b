package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"authfetch/pkg/logging"

	"github.com/google/uuid"
)

// Authenticator supplies the HTTP transport for one mechanism. Implementations
// live in internal/auth; the negotiator only sees this interface so the core
// loop stays independent of any credential library.
type Authenticator interface {
	// Mechanism identifies the scheme this authenticator implements.
	Mechanism() Mechanism

	// Available reports whether the process identity can resolve
	// credentials for this mechanism at all. Unavailable mechanisms are
	// skipped without consuming an attempt.
	Available() bool

	// Transport returns a fresh round tripper for one attempt. No
	// negotiated state is shared between calls.
	Transport() (http.RoundTripper, error)
}

// Negotiator tries a fixed, ordered list of authentication mechanisms against
// an origin until one succeeds. It holds no per-request state and is safe for
// concurrent use.
type Negotiator struct {
	order     []Mechanism
	providers map[Mechanism]Authenticator
	timeout   time.Duration
	maxBody   int64
}

// NegotiatorOption configures a Negotiator.
type NegotiatorOption func(*Negotiator)

// WithTimeout bounds each mechanism attempt. Zero keeps the default of 30s.
func WithTimeout(d time.Duration) NegotiatorOption {
	return func(n *Negotiator) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithMaxBodyBytes caps how much of a response body is read. Zero keeps the
// default of 256 KiB.
func WithMaxBodyBytes(limit int64) NegotiatorOption {
	return func(n *Negotiator) {
		if limit > 0 {
			n.maxBody = limit
		}
	}
}

// NewNegotiator creates a negotiator that tries mechanisms in the given order.
// The order is process configuration and does not change between requests.
func NewNegotiator(order []Mechanism, authenticators []Authenticator, opts ...NegotiatorOption) *Negotiator {
	providers := make(map[Mechanism]Authenticator, len(authenticators))
	for _, a := range authenticators {
		providers[a.Mechanism()] = a
	}

	n := &Negotiator{
		order:     order,
		providers: providers,
		timeout:   30 * time.Second,
		maxBody:   256 * 1024,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// response carries the winning response body out of an attempt.
type response struct {
	body        []byte
	contentType string
	truncated   bool
}

// Fetch resolves one request. The returned error is non-nil only for faults
// detected before any network I/O (invalid request, empty mechanism list);
// everything that happens on the wire is carried in the Result.
func (n *Negotiator) Fetch(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if len(n.order) == 0 {
		return Result{}, ErrNoMechanisms
	}

	callID := uuid.NewString()
	logging.Debug("Fetch", "[%s] %s %s, mechanism order %v", callID, req.method(), req.URL, n.order)

	var attempts []Attempt
	tried := make(map[Mechanism]bool, len(n.order))
	for _, mechanism := range n.order {
		if tried[mechanism] {
			// Each mechanism gets at most one attempt per call, even when
			// the configured order repeats it.
			logging.Debug("Fetch", "[%s] skipping duplicate %s in mechanism order", callID, mechanism)
			continue
		}
		provider, ok := n.providers[mechanism]
		if !ok || !provider.Available() {
			// A mechanism the process identity cannot use at all is a
			// local fact, not an origin decision; skip without
			// consuming an attempt.
			logging.Debug("Fetch", "[%s] skipping %s: not available", callID, mechanism)
			continue
		}

		attempt, resp := n.attempt(ctx, provider, req)
		attempts = append(attempts, attempt)
		tried[mechanism] = true

		switch attempt.Outcome {
		case OutcomeSuccess:
			logging.Info("Fetch", "[%s] %s %s succeeded via %s (HTTP %d, %d bytes)",
				callID, req.method(), req.URL, mechanism, attempt.Status, len(resp.body))
			return Result{
				OK:          true,
				Body:        resp.body,
				ContentType: resp.contentType,
				Status:      attempt.Status,
				Mechanism:   mechanism,
				Truncated:   resp.truncated,
				Attempts:    attempts,
			}, nil

		case OutcomeAuthRejected:
			logging.Debug("Fetch", "[%s] %s rejected (%s), trying next mechanism", callID, mechanism, attempt)

		case OutcomeHTTPError:
			// Unauthenticated, an error status is the origin's final
			// answer. Under credentials the same status can still depend
			// on the identity presented, so later mechanisms get a turn.
			if mechanism == MechanismAnonymous {
				logging.Warn("Fetch", "[%s] %s: terminal attempt: %s", callID, mechanism, attempt)
				return Result{Attempts: attempts}, nil
			}
			logging.Debug("Fetch", "[%s] %s answered HTTP %d, trying next mechanism", callID, mechanism, attempt.Status)

		default:
			// Transport fault: a different credential scheme cannot fix a
			// network-layer problem, so the negotiation stops.
			logging.Warn("Fetch", "[%s] %s: terminal attempt: %s", callID, mechanism, attempt)
			return Result{Attempts: attempts}, nil
		}
	}

	logging.Info("Fetch", "[%s] no mechanism accepted for %s (%d attempted)", callID, req.URL, len(attempts))
	return Result{Attempts: attempts}, nil
}

// attempt performs one mechanism trial. Each attempt authenticates fresh: the
// transport comes from the provider per call and is never reused, so no
// negotiated credential state leaks between requests.
func (n *Negotiator) attempt(ctx context.Context, provider Authenticator, req Request) (Attempt, response) {
	mechanism := provider.Mechanism()

	rt, err := provider.Transport()
	if err != nil {
		// Credential material could not be resolved for this mechanism.
		// The origin never saw the request; treat it like a rejection so
		// the next mechanism still gets its turn.
		return Attempt{Mechanism: mechanism, Outcome: OutcomeAuthRejected, Err: err}, response{}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.method(), req.URL, bodyReader)
	if err != nil {
		return Attempt{Mechanism: mechanism, Outcome: OutcomeTransportError, Err: err}, response{}
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	client := &http.Client{Transport: rt}
	httpResp, err := client.Do(httpReq)
	if err != nil {
		if errors.Is(err, ErrCredential) {
			return Attempt{Mechanism: mechanism, Outcome: OutcomeAuthRejected, Err: err}, response{}
		}
		return Attempt{Mechanism: mechanism, Outcome: OutcomeTransportError, Err: err}, response{}
	}
	defer httpResp.Body.Close()

	attempt := Attempt{Mechanism: mechanism, Status: httpResp.StatusCode, Outcome: classifyStatus(httpResp.StatusCode)}
	if attempt.Outcome != OutcomeSuccess {
		return attempt, response{}
	}

	// Read the winning body while the attempt context is still alive. One
	// extra byte past the cap tells truncation apart from an exact fit.
	data, err := io.ReadAll(io.LimitReader(httpResp.Body, n.maxBody+1))
	if err != nil {
		return Attempt{Mechanism: mechanism, Status: httpResp.StatusCode, Outcome: OutcomeTransportError, Err: err}, response{}
	}

	resp := response{contentType: httpResp.Header.Get("Content-Type")}
	if int64(len(data)) > n.maxBody {
		resp.body = data[:n.maxBody]
		resp.truncated = true
	} else {
		resp.body = data
	}
	return attempt, resp
}

func classifyStatus(status int) Outcome {
	switch {
	case status >= 200 && status < 400:
		return OutcomeSuccess
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return OutcomeAuthRejected
	default:
		return OutcomeHTTPError
	}
}
