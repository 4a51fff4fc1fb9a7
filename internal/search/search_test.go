package search

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"freshkb-cli/internal/db"
	"freshkb-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededCatalog(t *testing.T) *db.Catalog {
	t.Helper()
	catalog, err := db.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { catalog.Close() })

	require.NoError(t, catalog.UpsertCategory(model.Category{ID: 1, Name: "IT Support"}))
	require.NoError(t, catalog.UpsertFolder(model.Folder{ID: 2, Name: "Network", CategoryID: 1}))

	vpn := model.ArticleStub{ID: 7, Title: "VPN setup", Status: model.StatusPublished, FolderID: 2, CategoryID: 1}
	require.NoError(t, catalog.UpsertArticle(vpn, &model.ArticleDetail{
		ArticleStub: vpn,
		Description: "<p>Install the tunnel client.</p>",
		Tags:        []string{"vpn", "remote"},
	}, model.MaterializationResult{Success: true}))

	printer := model.ArticleStub{ID: 8, Title: "Printer jam", Status: model.StatusDraft, FolderID: 2, CategoryID: 1}
	require.NoError(t, catalog.UpsertArticle(printer, &model.ArticleDetail{
		ArticleStub: printer,
		Description: "<p>Open the tray.</p>",
		Tags:        []string{"hardware"},
	}, model.MaterializationResult{}))

	return catalog
}

func TestResultsByField(t *testing.T) {
	catalog := seededCatalog(t)
	s := New(catalog, &bytes.Buffer{})

	tests := []struct {
		name    string
		opts    Options
		wantIDs []int64
	}{
		{"title match", Options{Query: "vpn", Field: "title"}, []int64{7}},
		{"content match", Options{Query: "tunnel", Field: "content"}, []int64{7}},
		{"tags match", Options{Query: "hardware", Field: "tags"}, []int64{8}},
		{"category match hits all", Options{Query: "support", Field: "category"}, []int64{7, 8}},
		{"folder match hits all", Options{Query: "network", Field: "folder"}, []int64{7, 8}},
		{"any field", Options{Query: "tray"}, []int64{8}},
		{"no match", Options{Query: "kubernetes", Field: "title"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Results(tt.opts)
			require.NoError(t, err)

			var ids []int64
			for _, r := range results {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestResultsInvalidField(t *testing.T) {
	s := New(seededCatalog(t), &bytes.Buffer{})
	_, err := s.Results(Options{Query: "x", Field: "author"})
	assert.Error(t, err)
}

func TestResultsLimit(t *testing.T) {
	s := New(seededCatalog(t), &bytes.Buffer{})
	results, err := s.Results(Options{Query: "network", Field: "folder", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRunJSONOutput(t *testing.T) {
	var out bytes.Buffer
	s := New(seededCatalog(t), &out)

	require.NoError(t, s.Run(Options{Query: "vpn", JSONOutput: true}))

	var decoded []Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "VPN setup", decoded[0].Title)
	assert.True(t, decoded[0].Success)
}

func TestRunRequiresQuery(t *testing.T) {
	s := New(seededCatalog(t), &bytes.Buffer{})
	assert.Error(t, s.Run(Options{}))
}

func TestRunTableOutput(t *testing.T) {
	var out bytes.Buffer
	s := New(seededCatalog(t), &out)

	require.NoError(t, s.Run(Options{Query: "printer"}))
	assert.Contains(t, out.String(), "Printer jam")
	assert.Contains(t, out.String(), "Draft")
}
