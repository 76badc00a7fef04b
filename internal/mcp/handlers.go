package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/flinsight/internal/compliance"
	"github.com/ziadkadry99/flinsight/internal/regulation"
	"github.com/ziadkadry99/flinsight/internal/retrieval"
)

// handleSearchRegulations runs a semantic search over the regulation index.
func (s *Server) handleSearchRegulations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", retrieval.DefaultK)
	if limit <= 0 {
		limit = retrieval.DefaultK
	}

	res := s.svc.Search(ctx, query, limit)
	if !res.Available {
		return mcp.NewToolResultError("The regulation index is not available. Check the embedding backend and restart."), nil
	}
	if len(res.Records) == 0 {
		return mcp.NewToolResultText("No regulation sections matched."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(res)), nil
}

// handleAskRegulations answers a question through the chat pipeline.
func (s *Server) handleAskRegulations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}

	out, err := s.svc.Chat(ctx, message)
	if err != nil {
		if errors.Is(err, compliance.ErrInvalidInput) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(out.Value.Response)
	if len(out.Value.RegulationsUsed) > 0 {
		sb.WriteString("\n\nSources:\n")
		for _, r := range out.Value.RegulationsUsed {
			fmt.Fprintf(&sb, "- %s %s\n", r.ID, r.Title)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleListRegulations lists stored records with the HTTP listing's filters.
func (s *Server) handleListRegulations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records := s.svc.ListRegulations(ctx, regulation.Query{
		Category:     request.GetString("category", ""),
		AircraftType: request.GetString("aircraft_type", ""),
		Search:       request.GetString("search", ""),
	})
	if len(records) == 0 {
		return mcp.NewToolResultText("No regulation records matched."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d record(s):\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&sb, "- %s %s [%s, %s]", r.ID, r.Title, r.Category, r.Date)
		if !r.General() {
			fmt.Fprintf(&sb, " aircraft: %s", strings.Join(r.AircraftTypes, ", "))
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults renders retrieved sections for agent consumption.
func formatSearchResults(res retrieval.Retrieval) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d section(s):\n", len(res.Records)))

	for i, r := range res.Records {
		sb.WriteString(fmt.Sprintf("\n--- Section %s ---\n", r.ID))
		sb.WriteString(fmt.Sprintf("Title: %s\n", r.Title))
		if r.Category != "" {
			sb.WriteString(fmt.Sprintf("Category: %s\n", r.Category))
		}
		if r.Date != "" && r.Date != regulation.UnknownDate {
			sb.WriteString(fmt.Sprintf("Date: %s\n", r.Date))
		}
		if i < len(res.Distances) {
			sb.WriteString(fmt.Sprintf("Distance: %.4f\n", res.Distances[i]))
		}

		sb.WriteString("\n")
		sb.WriteString(r.Content)
		sb.WriteString("\n")
	}

	return sb.String()
}
