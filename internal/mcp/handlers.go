package mcp

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"freshkb-cli/internal/convert"
	"freshkb-cli/internal/model"
	"freshkb-cli/internal/search"
)

// handleSearchArticles handles the search_articles tool
func (s *Server) handleSearchArticles(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	query, _ := arguments["query"].(string)
	field, _ := arguments["field"].(string)

	limit := 50
	if l, ok := arguments["limit"].(float64); ok {
		limit = int(l)
	}

	if query == "" {
		return mcp.NewToolResultError("Search query is required"), nil
	}

	results, err := s.search.Results(search.Options{
		Query: query,
		Field: field,
		Limit: limit,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No articles found matching the search criteria."), nil
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Found %d articles:\n\n", len(results)))

	for i, result := range results {
		output.WriteString(fmt.Sprintf("**%d. %s**\n", i+1, result.Title))
		output.WriteString(fmt.Sprintf("ID: %d\n", result.ID))
		output.WriteString(fmt.Sprintf("Status: %s\n", model.StatusLabel(result.Status)))

		if result.Category != nil && *result.Category != "" {
			output.WriteString(fmt.Sprintf("Category: %s\n", *result.Category))
		}
		if result.Folder != nil && *result.Folder != "" {
			output.WriteString(fmt.Sprintf("Folder: %s\n", *result.Folder))
		}
		if result.Tags != "" {
			output.WriteString(fmt.Sprintf("Tags: %s\n", result.Tags))
		}

		if result.Success {
			output.WriteString("Content: Downloaded\n")
		} else {
			output.WriteString("Content: Not downloaded\n")
		}

		output.WriteString("\n")
	}

	return mcp.NewToolResultText(output.String()), nil
}

// handleGetArticle handles the get_article tool
func (s *Server) handleGetArticle(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	idFloat, ok := arguments["id"].(float64)
	if !ok {
		return mcp.NewToolResultError("Article ID is required and must be a number"), nil
	}
	id := int64(idFloat)

	includeContent := true
	if ic, ok := arguments["include_content"].(bool); ok {
		includeContent = ic
	}

	article, err := s.catalog.GetArticle(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Article %d not found: %v", id, err)), nil
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("# %s\n\n", article.Title))
	output.WriteString(fmt.Sprintf("ID: %d\n", article.ID))
	output.WriteString(fmt.Sprintf("Status: %s\n", model.StatusLabel(article.Status)))
	output.WriteString(fmt.Sprintf("Category ID: %d\n", article.CategoryID))
	output.WriteString(fmt.Sprintf("Folder ID: %d\n", article.FolderID))

	if article.URL != "" {
		output.WriteString(fmt.Sprintf("URL: %s\n", article.URL))
	}
	if article.Tags != "" {
		output.WriteString(fmt.Sprintf("Tags: %s\n", article.Tags))
	}
	if article.UpdatedAt != "" {
		output.WriteString(fmt.Sprintf("Updated: %s\n", article.UpdatedAt))
	}

	if article.Success {
		output.WriteString(fmt.Sprintf("Downloaded to: %s\n", article.LocalFolder))
		output.WriteString(fmt.Sprintf("Formats: %s\n", article.FormatsSaved))
		if article.AttachmentCount > 0 {
			output.WriteString(fmt.Sprintf("Attachments: %d/%d downloaded\n",
				article.AttachmentsDownloaded, article.AttachmentCount))
		}
	} else {
		output.WriteString("Download: failed\n")
	}

	if includeContent && article.Content != "" {
		output.WriteString("\n## Content\n\n")
		output.WriteString(convert.ToPlainText(article.Content))
		output.WriteString("\n")
	}

	return mcp.NewToolResultText(output.String()), nil
}

// handleListCategories handles the list_categories tool
func (s *Server) handleListCategories(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	categories, err := s.catalog.ListCategories()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list categories: %v", err)), nil
	}

	if len(categories) == 0 {
		return mcp.NewToolResultText("No categories in the catalog. Run an extraction first."), nil
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Found %d categories:\n\n", len(categories)))
	for _, category := range categories {
		output.WriteString(fmt.Sprintf("- %s (ID: %d)", category.Name, category.ID))
		if category.Description != "" {
			output.WriteString(": " + category.Description)
		}
		output.WriteString("\n")
	}

	return mcp.NewToolResultText(output.String()), nil
}

// handleListFolders handles the list_folders tool
func (s *Server) handleListFolders(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	var categoryID int64
	if f, ok := arguments["category_id"].(float64); ok {
		categoryID = int64(f)
	}

	folders, err := s.catalog.ListFolders(categoryID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list folders: %v", err)), nil
	}

	if len(folders) == 0 {
		return mcp.NewToolResultText("No folders found."), nil
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Found %d folders:\n\n", len(folders)))
	for _, folder := range folders {
		output.WriteString(fmt.Sprintf("- %s (ID: %d, category %d)\n", folder.Name, folder.ID, folder.CategoryID))
	}

	return mcp.NewToolResultText(output.String()), nil
}

// handleGetStats handles the get_stats tool
func (s *Server) handleGetStats(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	stats, err := s.catalog.Stats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read stats: %v", err)), nil
	}

	var output strings.Builder
	output.WriteString("Catalog statistics:\n\n")
	output.WriteString(fmt.Sprintf("Categories: %d\n", stats.Categories))
	output.WriteString(fmt.Sprintf("Folders: %d\n", stats.Folders))
	output.WriteString(fmt.Sprintf("Articles: %d (%d published, %d draft)\n",
		stats.Articles, stats.PublishedArticles, stats.DraftArticles))
	output.WriteString(fmt.Sprintf("Successfully downloaded: %d\n", stats.SuccessfulArticles))
	output.WriteString(fmt.Sprintf("Attachments: %d/%d downloaded\n",
		stats.AttachmentsDownloaded, stats.AttachmentsFound))
	output.WriteString(fmt.Sprintf("Extraction runs: %d\n", stats.Runs))

	if breakdown, err := s.catalog.CategoryBreakdown(); err == nil && len(breakdown) > 0 {
		output.WriteString("\nBy category:\n")
		for _, row := range breakdown {
			name := fmt.Sprintf("category %d", row.CategoryID)
			if row.Name != nil && *row.Name != "" {
				name = *row.Name
			}
			output.WriteString(fmt.Sprintf("- %s: %d articles, %d downloaded\n", name, row.Articles, row.Downloaded))
		}
	}

	return mcp.NewToolResultText(output.String()), nil
}
