// Package auth provides the per-mechanism credential providers behind the
// fetch negotiator.
//
// Each provider implements fetch.Authenticator: it knows whether the process
// identity can use its mechanism at all (Available) and hands out a fresh
// http.RoundTripper per attempt (Transport). Credentials come from the
// environment the process runs in (the login session's Kerberos credential
// cache for Negotiate/Kerberos, the USERDOMAIN/USERNAME identity for NTLM),
// never from request data.
//
// On hosts without a usable Kerberos or domain environment the corresponding
// providers simply report unavailable: the negotiator skips them and the
// remaining mechanisms still work.
package auth
