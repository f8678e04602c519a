package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mnemoware/mnemo/pkg/memory"
)

var (
	storeToolName    = "memory_store"
	storeDescription = "Store a piece of information in persistent memory. Use this to remember facts, preferences, decisions, or context that should survive across conversations."

	queryToolName    = "memory_query"
	queryDescription = "Search persistent memory semantically. Returns the memories most similar to the query text, optionally filtered by category, tags, or minimum importance."

	listToolName    = "memory_list"
	listDescription = "List stored memories with optional category and tag filters, sorted by recency, importance, access count, or category."
)

// StoreInput represents the input arguments for the memory_store tool.
type StoreInput struct {
	Content    string   `json:"content" jsonschema:"the text to remember"`
	Category   string   `json:"category,omitempty" jsonschema:"one of fact, preference, conversation, decision, error, pattern, context, instruction; defaults to fact"`
	Tags       []string `json:"tags,omitempty" jsonschema:"free-form tags for later filtering"`
	Importance *float64 `json:"importance,omitempty" jsonschema:"importance from 0.0 to 1.0; defaults to 0.5"`
	Source     string   `json:"source,omitempty" jsonschema:"where this memory came from"`
}

// QueryInput represents the input arguments for the memory_query tool.
type QueryInput struct {
	Text          string   `json:"text" jsonschema:"the query text to search for"`
	TopK          int      `json:"topk,omitempty" jsonschema:"maximum number of results; defaults to 5"`
	Category      string   `json:"category,omitempty" jsonschema:"restrict results to one category"`
	Tags          []string `json:"tags,omitempty" jsonschema:"require all of these tags"`
	MinImportance *float64 `json:"min_importance,omitempty" jsonschema:"minimum importance threshold"`
}

// ListInput represents the input arguments for the memory_list tool.
type ListInput struct {
	Category string   `json:"category,omitempty" jsonschema:"restrict results to one category"`
	Tags     []string `json:"tags,omitempty" jsonschema:"require all of these tags"`
	Limit    int      `json:"limit,omitempty" jsonschema:"maximum number of results; defaults to 20"`
	SortBy   string   `json:"sort_by,omitempty" jsonschema:"one of created_at, updated_at, importance, access_count, category; defaults to created_at"`
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func okResult(output any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult("Failed to serialize results: %v", err), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}

// handleStore processes a memory_store request via MCP.
func (s *Server) handleStore(ctx context.Context, _ *mcp.CallToolRequest, input StoreInput) (*mcp.CallToolResult, memory.StoreResult, error) {
	res, err := s.config.Service.Store(ctx, memory.StoreInput{
		Content:    input.Content,
		Category:   input.Category,
		Tags:       input.Tags,
		Importance: input.Importance,
		Source:     input.Source,
	})
	if err != nil {
		return errorResult("Memory store failed: %v", err), memory.StoreResult{}, nil
	}

	result, err := okResult(res)
	return result, *res, err
}

// handleQuery processes a memory_query request via MCP.
func (s *Server) handleQuery(ctx context.Context, _ *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, memory.QueryResult, error) {
	res, err := s.config.Service.Query(ctx, memory.QueryInput{
		Text:          input.Text,
		TopK:          input.TopK,
		Category:      input.Category,
		Tags:          input.Tags,
		MinImportance: input.MinImportance,
	})
	if err != nil {
		return errorResult("Memory query failed: %v", err), memory.QueryResult{}, nil
	}

	result, err := okResult(res)
	return result, *res, err
}

// handleList processes a memory_list request via MCP.
func (s *Server) handleList(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, memory.ListResult, error) {
	res, err := s.config.Service.List(ctx, memory.ListInput{
		Category: input.Category,
		Tags:     input.Tags,
		Limit:    input.Limit,
		SortBy:   input.SortBy,
	})
	if err != nil {
		return errorResult("Memory list failed: %v", err), memory.ListResult{}, nil
	}

	result, err := okResult(res)
	return result, *res, err
}
