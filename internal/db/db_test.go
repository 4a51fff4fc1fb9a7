package db

import (
	"path/filepath"
	"testing"
	"time"

	"freshkb-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

func TestUpsertArticleIsIdempotent(t *testing.T) {
	catalog := openTestCatalog(t)

	stub := model.ArticleStub{ID: 7, Title: "VPN setup", Status: model.StatusPublished, FolderID: 2, CategoryID: 1}
	detail := &model.ArticleDetail{
		ArticleStub: stub,
		Description: "<p>Install the client.</p>",
		Tags:        []string{"vpn", "remote"},
		URL:         "https://example.freshservice.com/support/solutions/articles/7",
	}
	result := model.MaterializationResult{Success: true, FormatsSaved: []string{model.FormatHTML, model.FormatJSON}}

	require.NoError(t, catalog.UpsertArticle(stub, detail, result))
	require.NoError(t, catalog.UpsertArticle(stub, detail, result))

	var count int
	require.NoError(t, catalog.Get(&count, "SELECT COUNT(*) FROM articles"))
	assert.Equal(t, 1, count)

	var tags string
	require.NoError(t, catalog.Get(&tags, "SELECT tags FROM articles WHERE id = 7"))
	assert.Equal(t, "vpn,remote", tags)
}

func TestUpsertArticleWithoutDetail(t *testing.T) {
	catalog := openTestCatalog(t)

	stub := model.ArticleStub{ID: 8, Title: "Unreachable", Status: model.StatusDraft}
	require.NoError(t, catalog.UpsertArticle(stub, nil, model.MaterializationResult{}))

	var row struct {
		Title   string `db:"title"`
		Content string `db:"content"`
		Success bool   `db:"success"`
	}
	require.NoError(t, catalog.Get(&row, "SELECT title, content, success FROM articles WHERE id = 8"))
	assert.Equal(t, "Unreachable", row.Title)
	assert.Empty(t, row.Content)
	assert.False(t, row.Success)
}

func TestStats(t *testing.T) {
	catalog := openTestCatalog(t)

	require.NoError(t, catalog.UpsertCategory(model.Category{ID: 1, Name: "General"}))
	require.NoError(t, catalog.UpsertFolder(model.Folder{ID: 2, Name: "How-to", CategoryID: 1}))

	ok := model.ArticleStub{ID: 7, Title: "VPN setup", Status: model.StatusPublished, CategoryID: 1}
	failed := model.ArticleStub{ID: 8, Title: "Unreachable", Status: model.StatusDraft, CategoryID: 1}
	require.NoError(t, catalog.UpsertArticle(ok, nil, model.MaterializationResult{
		Success:               true,
		AttachmentCount:       2,
		AttachmentsDownloaded: 1,
	}))
	require.NoError(t, catalog.UpsertArticle(failed, nil, model.MaterializationResult{}))

	require.NoError(t, catalog.RecordRun(model.RunSummary{
		TotalArticles:      2,
		SuccessfulArticles: 1,
		DownloadDirectory:  "kb",
	}, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))

	stats, err := catalog.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{
		Categories:            1,
		Folders:               1,
		Articles:              2,
		PublishedArticles:     1,
		DraftArticles:         1,
		SuccessfulArticles:    1,
		AttachmentsFound:      2,
		AttachmentsDownloaded: 1,
		Runs:                  1,
	}, stats)

	breakdown, err := catalog.CategoryBreakdown()
	require.NoError(t, err)
	require.Len(t, breakdown, 1)
	assert.Equal(t, int64(1), breakdown[0].CategoryID)
	require.NotNil(t, breakdown[0].Name)
	assert.Equal(t, "General", *breakdown[0].Name)
	assert.Equal(t, 2, breakdown[0].Articles)
	assert.Equal(t, 1, breakdown[0].Downloaded)
}
