package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchRegulationsTool defines the search_regulations MCP tool.
var searchRegulationsTool = mcp.NewTool("search_regulations",
	mcp.WithDescription("Semantic search over FAA Part 135 regulation sections. Returns the closest sections with their distance."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of sections to return (default 5)"),
	),
)

// askRegulationsTool defines the ask_regulations MCP tool.
var askRegulationsTool = mcp.NewTool("ask_regulations",
	mcp.WithDescription("Ask a compliance question. The answer is grounded in the retrieved regulation sections."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The question to answer"),
	),
)

// listRegulationsTool defines the list_regulations MCP tool.
var listRegulationsTool = mcp.NewTool("list_regulations",
	mcp.WithDescription("List stored regulation records, optionally filtered by category, aircraft type or a search term."),
	mcp.WithString("category",
		mcp.Description("Record category"),
		mcp.Enum("regulation", "advisory_circular", "legal_interpretation"),
	),
	mcp.WithString("aircraft_type",
		mcp.Description("ICAO type designator, e.g. GLF5"),
	),
	mcp.WithString("search",
		mcp.Description("Case-insensitive substring of the title or content"),
	),
)
