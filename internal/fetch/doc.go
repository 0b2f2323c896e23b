// Package fetch implements the authentication-negotiating HTTP fetch at the
// core of authfetch.
//
// A Negotiator holds a fixed, ordered list of authentication mechanisms
// (anonymous, Negotiate, Kerberos, NTLM) and resolves each fetch request by
// trying them sequentially against the origin:
//
//   - HTTP 2xx/3xx stops the negotiation: that mechanism won.
//   - HTTP 401/403 records an auth-rejected attempt and advances to the next
//     mechanism in order.
//   - A transport-level fault (DNS, connection, TLS, timeout) aborts
//     immediately: retrying with a different credential scheme cannot fix a
//     network-layer problem.
//   - Any other HTTP error status ends the negotiation when it answers the
//     anonymous mechanism; on an authenticated mechanism it is recorded and
//     the next mechanism is tried.
//
// Mechanisms are tried strictly sequentially, at most once per call even if
// the configured order repeats one, with a fresh transport per attempt so no
// negotiated credential state survives between requests. The result carries
// every attempt's classified outcome; nothing is dropped.
//
// Requests are validated before any network I/O; a malformed URL or an empty
// mechanism list surfaces as a distinct error without consuming an attempt.
package fetch
