package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// AuthConfigResourceURI identifies the resource describing the negotiation
// configuration of this server.
const AuthConfigResourceURI = "config://auth"

// GetResource returns the config://auth resource definition.
func (ft *FetchTools) GetResource() mcp.Resource {
	return mcp.NewResource(
		AuthConfigResourceURI,
		"Authentication configuration",
		mcp.WithResourceDescription("Configured mechanism order and per-mechanism availability for fetch_url"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleAuthConfigResource serves config://auth: the mechanism order this
// process was configured with and which mechanisms are actually usable under
// the current process identity.
func (ft *FetchTools) HandleAuthConfigResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	available := make(map[string]bool, len(ft.authenticators))
	for _, authenticator := range ft.authenticators {
		available[authenticator.Mechanism().String()] = authenticator.Available()
	}

	order := make([]string, len(ft.order))
	for i, mechanism := range ft.order {
		order[i] = mechanism.String()
	}

	info := map[string]interface{}{
		"mechanismOrder": order,
		"available":      available,
	}

	jsonData, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to format auth configuration: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      AuthConfigResourceURI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
