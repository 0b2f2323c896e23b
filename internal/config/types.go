package config

import (
	"time"
)

// Config is the top-level configuration structure for authfetch.
type Config struct {
	Auth   AuthConfig   `yaml:"auth"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Server ServerConfig `yaml:"server"`
}

const (
	// TransportStreamableHTTP is the streamable HTTP transport.
	TransportStreamableHTTP = "streamable-http"
	// TransportSSE is the Server-Sent Events transport.
	TransportSSE = "sse"
	// TransportStdio is the standard I/O transport.
	TransportStdio = "stdio"
)

// AuthConfig defines how outbound requests are authenticated.
type AuthConfig struct {
	// Mechanisms is the ordered list of mechanisms tried against the origin.
	// Valid entries: "anonymous", "negotiate", "kerberos", "ntlm".
	// The order is fixed for the lifetime of the process.
	Mechanisms []string `yaml:"mechanisms,omitempty"`
	// SPN overrides the service principal name used for Kerberos/Negotiate.
	// When empty it is derived from the target host ("HTTP/<host>").
	SPN string `yaml:"spn,omitempty"`
	// Krb5Conf is the path to the Kerberos client configuration.
	Krb5Conf string `yaml:"krb5Conf,omitempty"`
}

// FetchConfig bounds individual fetch attempts.
type FetchConfig struct {
	// Timeout bounds each mechanism attempt (default: 30s).
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// MaxBodyBytes caps how much of a response body is returned to the
	// caller (default: 256 KiB).
	MaxBodyBytes int64 `yaml:"maxBodyBytes,omitempty"`
	// InsecureSkipVerify disables TLS certificate verification for
	// origins with internal CAs (default: false).
	InsecureSkipVerify bool `yaml:"insecureSkipVerify,omitempty"`
}

// ServerConfig defines how the MCP server is exposed to its caller.
type ServerConfig struct {
	Transport string `yaml:"transport,omitempty"` // "stdio", "sse", or "streamable-http" (default: stdio)
	Host      string `yaml:"host,omitempty"`      // Host to bind to for HTTP transports (default: localhost)
	Port      int    `yaml:"port,omitempty"`      // Port for HTTP transports (default: 8080)
}
