package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"authfetch/internal/auth"
	"authfetch/internal/config"
	"authfetch/internal/fetch"
	"authfetch/internal/mcpserver"
	"authfetch/internal/tools"
	"authfetch/pkg/logging"

	"github.com/spf13/cobra"
)

// serveTransport overrides the configured MCP transport.
var serveTransport string

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveConfigPath points at an explicit configuration file, bypassing the
// user/project config layers.
var serveConfigPath string

// serveCmd defines the serve command structure. This is the main command of
// authfetch: it starts the MCP server and blocks until the client disconnects
// or the process is signalled.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the authfetch MCP server",
	Long: `Starts the authfetch MCP server, exposing the fetch_url and echo tools
to an MCP client (e.g. an AI assistant).

fetch_url performs an HTTP request against the given URL, negotiating
authentication with the origin by trying the configured mechanisms in order
(by default: anonymous, then Negotiate, Kerberos, and NTLM) with the
credentials of the process identity. The first mechanism the origin accepts
wins; a network-level fault stops the negotiation immediately.

Transports:
  stdio            - serve the process's stdin/stdout (default; log output
                     goes to stderr so the protocol stream stays clean)
  sse              - HTTP Server-Sent Events endpoint on server.host:port
  streamable-http  - streamable HTTP endpoint on server.host:port

Configuration:
  authfetch loads configuration from ~/.config/authfetch/config.yaml and
  ./.authfetch/config.yaml, or from an explicit --config file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	logLevel := logging.LevelInfo
	if serveDebug {
		logLevel = logging.LevelDebug
	}
	// stderr always: with the stdio transport, stdout carries the protocol
	logging.Init(logLevel, os.Stderr)

	var cfg config.Config
	var err error
	if serveConfigPath != "" {
		cfg, err = config.LoadConfigFromPath(serveConfigPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if serveTransport != "" {
		cfg.Server.Transport = serveTransport
	}

	order, err := fetch.ParseMechanisms(cfg.Auth.Mechanisms)
	if err != nil {
		return fmt.Errorf("invalid auth.mechanisms configuration: %w", err)
	}

	authenticators := auth.NewAuthenticators(order, auth.Config{
		SPN:                cfg.Auth.SPN,
		Krb5Conf:           cfg.Auth.Krb5Conf,
		InsecureSkipVerify: cfg.Fetch.InsecureSkipVerify,
	})
	for _, authenticator := range authenticators {
		logging.Info("Serve", "Auth mechanism %s available: %v",
			authenticator.Mechanism(), authenticator.Available())
	}

	negotiator := fetch.NewNegotiator(order, authenticators,
		fetch.WithTimeout(cfg.Fetch.Timeout),
		fetch.WithMaxBodyBytes(cfg.Fetch.MaxBodyBytes),
	)

	toolset := tools.New(negotiator, order, authenticators)
	srv := mcpserver.NewServer(cfg.Server, toolset)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "MCP transport: stdio, sse, or streamable-http (overrides config)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to an explicit config file")
}
