package config

import "time"

const (
	// DefaultTimeout bounds each authentication attempt against the origin.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodyBytes caps the response body handed back to the caller.
	DefaultMaxBodyBytes = 256 * 1024
	// DefaultKrb5Conf is the standard Kerberos client configuration path.
	DefaultKrb5Conf = "/etc/krb5.conf"
)

// GetDefaultConfig returns the built-in configuration. An unauthenticated
// attempt is made first, then the platform mechanisms in decreasing order of
// preference, matching what an SSO-enabled browser would negotiate.
func GetDefaultConfig() Config {
	return Config{
		Auth: AuthConfig{
			Mechanisms: []string{"anonymous", "negotiate", "kerberos", "ntlm"},
			Krb5Conf:   DefaultKrb5Conf,
		},
		Fetch: FetchConfig{
			Timeout:      DefaultTimeout,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			Host:      "localhost",
			Port:      8080,
		},
	}
}
