package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to look up"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of passages to return (default 4)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []HitOutput `json:"results"`
	Count   int         `json:"count"`
}

// HitOutput is one retrieved passage.
type HitOutput struct {
	Title string  `json:"title"`
	Chunk string  `json:"chunk"`
	Score float64 `json:"score"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	K        int    `json:"k,omitempty" jsonschema:"number of passages to ground the answer on (default 4)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string      `json:"answer"`
	Sources []HitOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Retrieve the indexed passages most similar to a query",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question from the indexed documents, citing sources",
		}, s.handleAsk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, ErrEmptyQuery
	}

	hits := s.ports.Search.Search(ctx, input.Query, input.K)

	return nil, SearchOutput{
		Results: toHitOutputs(hits),
		Count:   len(hits),
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, ErrEmptyQuery
	}

	answer := s.ports.Answer.Ask(ctx, input.Question, input.K)

	return nil, AskOutput{
		Answer:  answer.Text,
		Sources: toHitOutputs(answer.Sources),
	}, nil
}

func toHitOutputs(hits []domain.RetrievedHit) []HitOutput {
	out := make([]HitOutput, len(hits))
	for i, h := range hits {
		out[i] = HitOutput{Title: h.Title, Chunk: h.Chunk, Score: h.Score}
	}
	return out
}
