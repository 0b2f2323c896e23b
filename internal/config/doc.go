// Package config provides configuration management for authfetch.
//
// This package implements a layered configuration system that allows users to
// customize authfetch's behavior through YAML files. Configuration is loaded
// from multiple sources and merged in a specific order, with later sources
// overriding earlier ones.
//
// # Configuration Layers
//
// Configuration is loaded and merged in the following order:
//
//  1. Default Configuration (embedded in binary)
//     - Provides sensible defaults for all settings
//     - Ensures authfetch works out-of-the-box
//
//  2. User Configuration (~/.config/authfetch/config.yaml)
//     - User-specific settings that apply everywhere
//
//  3. Project Configuration (./.authfetch/config.yaml)
//     - Settings for the current directory, shareable via version control
//
// An explicit --config flag bypasses the user/project layers and applies the
// named file directly over the defaults.
//
// # Configuration Structure
//
// The configuration file uses YAML format with the following sections:
//
//	auth:
//	  mechanisms: [anonymous, negotiate, kerberos, ntlm]
//	  spn: "HTTP/intranet.example.com"   # optional, derived from host when empty
//	  krb5Conf: /etc/krb5.conf
//
//	fetch:
//	  timeout: 30s
//	  maxBodyBytes: 262144
//	  insecureSkipVerify: false
//
//	server:
//	  transport: stdio    # stdio, sse, or streamable-http
//	  host: localhost
//	  port: 8080
//
// The mechanism order is fixed for the lifetime of the process; it is
// configuration, not per-request data.
package config
