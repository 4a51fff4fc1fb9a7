package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"freshkb-cli/internal/db"
	"freshkb-cli/internal/search"
	"freshkb-cli/internal/version"
)

// Server exposes a previously extracted knowledge-base catalog over MCP.
type Server struct {
	catalog   *db.Catalog
	search    *search.Search
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance backed by the given catalog.
func NewServer(catalog *db.Catalog) *Server {
	s := &Server{
		catalog: catalog,
		search:  search.New(catalog, nil),
	}

	s.mcpServer = server.NewMCPServer(
		"freshkb",
		version.GetMCPVersion(),
	)

	s.registerTools()
	return s
}

// Start starts the MCP server using stdio
func (s *Server) Start() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "search_articles",
		Description: "Search the extracted knowledge-base articles by keyword. Matches title, content, tags, category and folder names unless a specific field is given.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query text, matched case-insensitively as a substring.",
				},
				"field": map[string]interface{}{
					"type":        "string",
					"description": "Specific field to search: title, content, tags, category, folder",
					"enum":        []string{"title", "content", "tags", "category", "folder"},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (default: 50)",
				},
			},
		},
	}, s.handleSearchArticles)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_article",
		Description: "Get a single extracted article by ID with its full content and download outcome",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Article ID",
				},
				"include_content": map[string]interface{}{
					"type":        "boolean",
					"description": "Include the full article body (default: true)",
				},
			},
		},
	}, s.handleGetArticle)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_categories",
		Description: "List the knowledge-base categories seen by the last extraction run",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListCategories)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_folders",
		Description: "List knowledge-base folders, optionally restricted to one category",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"category_id": map[string]interface{}{
					"type":        "integer",
					"description": "Restrict to folders in this category",
				},
			},
		},
	}, s.handleListFolders)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_stats",
		Description: "Summarize the catalog: category, folder, article and run counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleGetStats)
}
