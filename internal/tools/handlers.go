package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"authfetch/internal/fetch"

	"github.com/mark3labs/mcp-go/mcp"
)

// HandleFetchURL handles the fetch_url MCP tool.
func (ft *FetchTools) HandleFetchURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required"), nil
	}

	fetchReq := fetch.Request{
		URL:    url,
		Method: request.GetString("method", http.MethodGet),
	}
	if body := request.GetString("body", ""); body != "" {
		fetchReq.Body = []byte(body)
	}

	if headersRaw := request.GetArguments()["headers"]; headersRaw != nil {
		headersMap, ok := headersRaw.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("headers must be an object of string values"), nil
		}
		headers := make(map[string]string, len(headersMap))
		for key, value := range headersMap {
			s, ok := value.(string)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("header %q must be a string", key)), nil
			}
			headers[key] = s
		}
		fetchReq.Headers = headers
	}

	result, err := ft.negotiator.Fetch(ctx, fetchReq)
	if err != nil {
		switch {
		case errors.Is(err, fetch.ErrInvalidRequest):
			return mcp.NewToolResultError(fmt.Sprintf("Invalid request: %v", err)), nil
		case errors.Is(err, fetch.ErrNoMechanisms):
			return mcp.NewToolResultError("Configuration error: no authentication mechanisms configured"), nil
		default:
			return mcp.NewToolResultError(fmt.Sprintf("Fetch failed: %v", err)), nil
		}
	}

	if !result.OK {
		return mcp.NewToolResultError(fetch.Render(result)), nil
	}
	return mcp.NewToolResultText(fetch.Render(result)), nil
}

// HandleEcho handles the echo MCP tool. It returns the input unchanged.
func (ft *FetchTools) HandleEcho(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message parameter is required"), nil
	}
	return mcp.NewToolResultText(message), nil
}
