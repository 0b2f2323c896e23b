package tools

import (
	"authfetch/internal/fetch"

	"github.com/mark3labs/mcp-go/mcp"
)

// FetchTools provides the MCP tools exposed by authfetch.
type FetchTools struct {
	negotiator     *fetch.Negotiator
	authenticators []fetch.Authenticator
	order          []fetch.Mechanism
}

// New creates the tool set around a configured negotiator. The authenticator
// list and order are only consulted for the config://auth resource.
func New(negotiator *fetch.Negotiator, order []fetch.Mechanism, authenticators []fetch.Authenticator) *FetchTools {
	return &FetchTools{
		negotiator:     negotiator,
		authenticators: authenticators,
		order:          order,
	}
}

// GetTools returns all tool definitions.
func (ft *FetchTools) GetTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("fetch_url",
			mcp.WithDescription("Fetch content from a URL, authenticating against the origin with the configured mechanisms (Negotiate/Kerberos/NTLM) under the server's process identity"),
			mcp.WithString("url",
				mcp.Required(),
				mcp.Description("Absolute http(s) URL to fetch"),
			),
			mcp.WithString("method",
				mcp.Description("HTTP method (default GET)"),
			),
			mcp.WithObject("headers",
				mcp.Description("Additional request headers as a string-to-string map"),
			),
			mcp.WithString("body",
				mcp.Description("Request body to send"),
			),
		),
		mcp.NewTool("echo",
			mcp.WithDescription("Echo the input message back as-is"),
			mcp.WithString("message",
				mcp.Required(),
				mcp.Description("The message to echo back"),
			),
		),
	}
}
