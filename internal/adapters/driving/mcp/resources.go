package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for upfund resources.
const uriScheme = "upfund://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Stats == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "Number of passages in the vector index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// handleIndexResource reports the index size.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	count, err := s.ports.Stats.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting entries: %w", err)
	}

	data, err := json.Marshal(struct {
		Entries int `json:"entries"`
	}{Entries: count})
	if err != nil {
		return nil, fmt.Errorf("marshalling stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
