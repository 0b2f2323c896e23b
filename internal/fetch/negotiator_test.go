package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"authfetch/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logging.Init(logging.LevelError, io.Discard)
	os.Exit(m.Run())
}

// mechanismHeader carries the attempting mechanism to the test origin so the
// handler can decide per mechanism without real credential handshakes.
const mechanismHeader = "X-Test-Mechanism"

// mockAuthenticator implements Authenticator for testing
type mockAuthenticator struct {
	mechanism    Mechanism
	available    bool
	transportErr error
}

func (m *mockAuthenticator) Mechanism() Mechanism { return m.mechanism }
func (m *mockAuthenticator) Available() bool      { return m.available }

func (m *mockAuthenticator) Transport() (http.RoundTripper, error) {
	if m.transportErr != nil {
		return nil, m.transportErr
	}
	return &taggingTransport{mechanism: m.mechanism}, nil
}

// taggingTransport marks each request with the mechanism that sent it.
type taggingTransport struct {
	mechanism Mechanism
}

func (t *taggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set(mechanismHeader, t.mechanism.String())
	return http.DefaultTransport.RoundTrip(r)
}

// originRecorder is an httptest handler that answers per mechanism and
// records the order in which mechanisms arrived.
type originRecorder struct {
	mu       sync.Mutex
	seen     []string
	statuses map[string]int // mechanism name -> status to answer
	body     string
}

func (o *originRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mechanism := r.Header.Get(mechanismHeader)
	o.mu.Lock()
	o.seen = append(o.seen, mechanism)
	o.mu.Unlock()

	status, ok := o.statuses[mechanism]
	if !ok {
		status = http.StatusUnauthorized
	}
	w.WriteHeader(status)
	if status == http.StatusOK {
		fmt.Fprint(w, o.body)
	}
}

func (o *originRecorder) seenMechanisms() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.seen...)
}

func available(mechanisms ...Mechanism) []Authenticator {
	authenticators := make([]Authenticator, len(mechanisms))
	for i, m := range mechanisms {
		authenticators[i] = &mockAuthenticator{mechanism: m, available: true}
	}
	return authenticators
}

func TestFetch_FirstMechanismWins(t *testing.T) {
	origin := &originRecorder{
		statuses: map[string]int{"ntlm": http.StatusOK},
		body:     "hello",
	}
	server := httptest.NewServer(origin)
	defer server.Close()

	n := NewNegotiator([]Mechanism{MechanismNTLM, MechanismKerberos}, available(MechanismNTLM, MechanismKerberos))

	result, err := n.Fetch(context.Background(), Request{URL: server.URL})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Equal(t, "hello", string(result.Body))
	assert.Equal(t, MechanismNTLM, result.Mechanism)
	assert.Equal(t, http.StatusOK, result.Status)

	// Short-circuit: the second mechanism was never attempted
	assert.Equal(t, []string{"ntlm"}, origin.seenMechanisms())
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, OutcomeSuccess, result.Attempts[0].Outcome)
}

func TestFetch_FallsBackInConfiguredOrder(t *testing.T) {
	// Scenario from the tool's contract: NTLM rejected, Kerberos accepted.
	origin := &originRecorder{
		statuses: map[string]int{
			"ntlm":     http.StatusUnauthorized,
			"kerberos": http.StatusOK,
		},
		body: "OK",
	}
	server := httptest.NewServer(origin)
	defer server.Close()

	n := NewNegotiator([]Mechanism{MechanismNTLM, MechanismKerberos}, available(MechanismNTLM, MechanismKerberos))

	result, err := n.Fetch(context.Background(), Request{URL: server.URL})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Equal(t, "OK", string(result.Body))
	assert.Equal(t, MechanismKerberos, result.Mechanism)

	assert.Equal(t, []string{"ntlm", "kerberos"}, origin.seenMechanisms())
	require.Len(t, result.Attempts, 2)
	assert.Equal(t, MechanismNTLM, result.Attempts[0].Mechanism)
	assert.Equal(t, OutcomeAuthRejected, result.Attempts[0].Outcome)
	assert.Equal(t, http.StatusUnauthorized, result.Attempts[0].Status)
	assert.Equal(t, MechanismKerberos, result.Attempts[1].Mechanism)
	assert.Equal(t, OutcomeSuccess, result.Attempts[1].Outcome)
}

func TestFetch_AllMechanismsRejected(t *testing.T) {
	origin := &originRecorder{
		statuses: map[string]int{
			"anonymous": http.StatusUnauthorized,
			"negotiate": http.StatusForbidden,
			"ntlm":      http.StatusUnauthorized,
		},
	}
	server := httptest.NewServer(origin)
	defer server.Close()

	order := []Mechanism{MechanismAnonymous, MechanismNegotiate, MechanismNTLM}
	n := NewNegotiator(order, available(order...))

	result, err := n.Fetch(context.Background(), Request{URL: server.URL})
	require.NoError(t, err)

	assert.False(t, result.OK)

	// Every configured mechanism produced an attempt, in order, once each
	assert.Equal(t, []string{"anonymous", "negotiate", "ntlm"}, origin.seenMechanisms())
	require.Len(t, result.Attempts, 3)
	for i, mechanism := range order {
		assert.Equal(t, mechanism, result.Attempts[i].Mechanism)
		assert.Equal(t, OutcomeAuthRejected, result.Attempts[i].Outcome)
	}
}

func TestFetch_TransportErrorAbortsImmediately(t *testing.T) {
	// A closed server yields a connection error on the very first attempt.
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	n := NewNegotiator([]Mechanism{MechanismNTLM, MechanismKerberos}, available(MechanismNTLM, MechanismKerberos))

	result, err := n.Fetch(context.Background(), Request{URL: url})
	require.NoError(t, err)

	assert.False(t, result.OK)
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, MechanismNTLM, result.Attempts[0].Mechanism)
	assert.Equal(t, OutcomeTransportError, result.Attempts[0].Outcome)
	assert.Error(t, result.Attempts[0].Err)
}

func TestFetch_TimeoutIsTransportError(t *testing.T) {
	origin := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	server := httptest.NewServer(origin)
	defer server.Close()

	n := NewNegotiator([]Mechanism{MechanismAnonymous}, available(MechanismAnonymous),
		WithTimeout(50*time.Millisecond))

	result, err := n.Fetch(context.Background(), Request{URL: server.URL})
	require.NoError(t, err)

	assert.False(t, result.OK)
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, OutcomeTransportError, result.Attempts[0].Outcome)
}

func TestFetch_NonAuthHTTPErrorOnAnonymousIsTerminal(t *testing.T) {
	origin := &originRecorder{
		statuses: map[string]int{"anonymous": http.StatusInternalServerError},
	}
	server := httptest.NewServer(origin)
	defer server.Close()

	n := NewNegotiator([]Mechanism{MechanismAnonymous, MechanismNTLM}, available(MechanismAnonymous, MechanismNTLM))

	result, err := n.Fetch(context.Background(), Request{URL: server.URL})
	require.NoError(t, err)

	assert.False(t, result.OK)
	// A 500 with no credentials attached is the origin's final answer
	assert.Equal(t, []string{"anonymous"}, origin.seenMechanisms())
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, OutcomeHTTPError, result.Attempts[0].Outcome)
	assert.Equal(t, http.StatusInternalServerError, result.Attempts[0].Status)
}

func TestFetch_NonAuthHTTPErrorOnAuthenticatedMechanismAdvances(t *testing.T) {
	origin := &originRecorder{
		statuses: map[string]int{
			"ntlm":     http.StatusNotFound,
			"kerberos": http.StatusOK,
		},
		body: "found under kerberos",
	}
	server := httptest.NewServer(origin)
	defer server.Close()

	n := NewNegotiator([]Mechanism{MechanismNTLM, MechanismKerberos}, available(MechanismNTLM, MechanismKerberos))

	result, err := n.Fetch(context.Background(), Request{URL: server.URL})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Equal(t, MechanismKerberos, result.Mechanism)
	assert.Equal(t, "found under kerberos", string(result.Body))

	// The 404 under NTLM is recorded but does not end the negotiation
	assert.Equal(t, []string{"ntlm", "kerberos"}, origin.seenMechanisms())
	require.Len(t, result.Attempts, 2)
	assert.Equal(t, OutcomeHTTPError, result.Attempts[0].Outcome)
	assert.Equal(t, http.StatusNotFound, result.Attempts[0].Status)
}

func TestFetch_DuplicatedOrderTriesEachMechanismOnce(t *testing.T) {
	origin := &originRecorder{
		statuses: map[string]int{"ntlm": http.StatusUnauthorized, "kerberos": http.StatusUnauthorized},
	}
	server := httptest.NewServer(origin)
	defer server.Close()

	order := []Mechanism{MechanismNTLM, MechanismNTLM, MechanismKerberos, MechanismNTLM}
	n := NewNegotiator(order, available(MechanismNTLM, MechanismKerberos))

	result, err := n.Fetch(context.Background(), Request{URL: server.URL})
	require.NoError(t, err)

	assert.False(t, result.OK)
	// Repeats in the configured order never reach the origin twice
	assert.Equal(t, []string{"ntlm", "kerberos"}, origin.seenMechanisms())
	require.Len(t, result.Attempts, 2)
	assert.Equal(t, MechanismNTLM, result.Attempts[0].Mechanism)
	assert.Equal(t, MechanismKerberos, result.Attempts[1].Mechanism)
}

func TestFetch_InvalidURLRejectedBeforeNetwork(t *testing.T) {
	n := NewNegotiator([]Mechanism{MechanismAnonymous}, available(MechanismAnonymous))

	for _, url := range []string{"not a url", "", "/relative/path", "ftp://example.com/file"} {
		result, err := n.Fetch(context.Background(), Request{URL: url})
		assert.ErrorIs(t, err, ErrInvalidRequest, "url %q", url)
		assert.Empty(t, result.Attempts, "url %q", url)
	}
}

func TestFetch_EmptyMechanismListIsConfigurationError(t *testing.T) {
	n := NewNegotiator(nil, nil)

	result, err := n.Fetch(context.Background(), Request{URL: "http://example.com"})
	assert.ErrorIs(t, err, ErrNoMechanisms)
	assert.Empty(t, result.Attempts)
}

func TestFetch_UnavailableMechanismSkippedWithoutAttempt(t *testing.T) {
	origin := &originRecorder{
		statuses: map[string]int{"kerberos": http.StatusOK},
		body:     "ok",
	}
	server := httptest.NewServer(origin)
	defer server.Close()

	authenticators := []Authenticator{
		&mockAuthenticator{mechanism: MechanismNTLM, available: false},
		&mockAuthenticator{mechanism: MechanismKerberos, available: true},
	}
	n := NewNegotiator([]Mechanism{MechanismNTLM, MechanismKerberos}, authenticators)

	result, err := n.Fetch(context.Background(), Request{URL: server.URL})
	require.NoError(t, err)

	assert.True(t, result.OK)
	// The unavailable mechanism never reached the origin and consumed no attempt
	assert.Equal(t, []string{"kerberos"}, origin.seenMechanisms())
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, MechanismKerberos, result.Attempts[0].Mechanism)
}

func TestFetch_CredentialFailureAdvancesToNextMechanism(t *testing.T) {
	origin := &originRecorder{
		statuses: map[string]int{"ntlm": http.StatusOK},
		body:     "ok",
	}
	server := httptest.NewServer(origin)
	defer server.Close()

	credentialErr := fmt.Errorf("%w: no ticket", ErrCredential)
	authenticators := []Authenticator{
		&mockAuthenticator{mechanism: MechanismKerberos, available: true, transportErr: credentialErr},
		&mockAuthenticator{mechanism: MechanismNTLM, available: true},
	}
	n := NewNegotiator([]Mechanism{MechanismKerberos, MechanismNTLM}, authenticators)

	result, err := n.Fetch(context.Background(), Request{URL: server.URL})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Equal(t, MechanismNTLM, result.Mechanism)

	// The local credential failure is retained as an attempt, not dropped
	require.Len(t, result.Attempts, 2)
	assert.Equal(t, OutcomeAuthRejected, result.Attempts[0].Outcome)
	assert.True(t, errors.Is(result.Attempts[0].Err, ErrCredential))
}

func TestFetch_PropagatesMethodHeadersAndBody(t *testing.T) {
	var gotMethod, gotHeader, gotBody string
	origin := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Custom")
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(origin)
	defer server.Close()

	n := NewNegotiator([]Mechanism{MechanismAnonymous}, available(MechanismAnonymous))

	result, err := n.Fetch(context.Background(), Request{
		URL:     server.URL,
		Method:  "post",
		Headers: map[string]string{"X-Custom": "value"},
		Body:    []byte(`{"k":"v"}`),
	})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "value", gotHeader)
	assert.Equal(t, `{"k":"v"}`, gotBody)
}

func TestFetch_BodyLimitTruncates(t *testing.T) {
	origin := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 100; i++ {
			fmt.Fprint(w, "0123456789")
		}
	})
	server := httptest.NewServer(origin)
	defer server.Close()

	n := NewNegotiator([]Mechanism{MechanismAnonymous}, available(MechanismAnonymous),
		WithMaxBodyBytes(64))

	result, err := n.Fetch(context.Background(), Request{URL: server.URL})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.True(t, result.Truncated)
	assert.Len(t, result.Body, 64)
}

func TestFetch_ConcurrentCallsAreIndependent(t *testing.T) {
	origin := &originRecorder{
		statuses: map[string]int{"anonymous": http.StatusOK},
		body:     "ok",
	}
	server := httptest.NewServer(origin)
	defer server.Close()

	n := NewNegotiator([]Mechanism{MechanismAnonymous}, available(MechanismAnonymous))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := n.Fetch(context.Background(), Request{URL: server.URL})
			assert.NoError(t, err)
			assert.True(t, result.OK)
			assert.Len(t, result.Attempts, 1)
		}()
	}
	wg.Wait()
}
