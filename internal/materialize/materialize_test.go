package materialize

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"freshkb-cli/internal/freshservice"
	"freshkb-cli/internal/logging"
	"freshkb-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	details      map[int64]*model.ArticleDetail
	failDownload bool
	downloaded   []string
}

func (f *fakeSource) ArticleDetail(id int64) (*model.ArticleDetail, freshservice.Outcome) {
	if d, ok := f.details[id]; ok {
		return d, freshservice.OutcomeOK
	}
	return nil, freshservice.OutcomeFailed
}

func (f *fakeSource) DownloadAttachment(att model.Attachment, destPath string) bool {
	if f.failDownload {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return false
	}
	if err := os.WriteFile(destPath, []byte("data"), 0644); err != nil {
		return false
	}
	f.downloaded = append(f.downloaded, destPath)
	return true
}

type fakeRenderer struct {
	fail bool
}

func (r *fakeRenderer) Render(html string) ([]byte, error) {
	if r.fail {
		return nil, errors.New("render broke")
	}
	return []byte("%PDF-1.4 fake"), nil
}

func detailFixture(id int64) *model.ArticleDetail {
	return &model.ArticleDetail{
		ArticleStub: model.ArticleStub{
			ID:     id,
			Title:  "How to: reset",
			Status: model.StatusPublished,
		},
		Description: "<p>Reset instructions.</p>",
		URL:         "https://acme.freshservice.com/a/1",
	}
}

func allFormats() Options {
	return Options{SavePDF: true, SaveHTML: true, SaveText: true, SaveMarkdown: true}
}

func TestFolderName(t *testing.T) {
	assert.Equal(t, "5_How to_ reset", FolderName(5, "How to: reset"))
	assert.Equal(t, "9_article_9", FolderName(9, ""))
}

func TestMaterializeAllFormats(t *testing.T) {
	baseDir := t.TempDir()
	src := &fakeSource{details: map[int64]*model.ArticleDetail{5: detailFixture(5)}}
	m := New(src, &fakeRenderer{}, "acme", baseDir, logging.Nop())

	stub := model.ArticleStub{ID: 5, Title: "How to: reset", Status: 1}
	result, detail := m.Materialize(stub, allFormats())

	require.True(t, result.Success)
	require.NotNil(t, detail)
	assert.ElementsMatch(t,
		[]string{model.FormatPDF, model.FormatHTML, model.FormatText, model.FormatMarkdown, model.FormatJSON},
		result.FormatsSaved)

	folder := filepath.Join(baseDir, "5_How to_ reset")
	assert.Equal(t, folder, result.LocalFolder)
	for _, name := range []string{"5_article.pdf", "5_article.html", "5_article.txt", "5_article.md", "5_metadata.json"} {
		_, err := os.Stat(filepath.Join(folder, name))
		assert.NoError(t, err, name)
	}
	info, err := os.Stat(filepath.Join(folder, "attachments"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	var meta model.MetadataRecord
	data, err := os.ReadFile(filepath.Join(folder, "5_metadata.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, int64(5), meta.ID)
	assert.Equal(t, "Published", meta.Status)
	assert.NotEmpty(t, meta.DownloadTimestamp)
}

func TestMaterializeDetailAbsent(t *testing.T) {
	baseDir := t.TempDir()
	src := &fakeSource{details: map[int64]*model.ArticleDetail{}}
	m := New(src, nil, "acme", baseDir, logging.Nop())

	result, detail := m.Materialize(model.ArticleStub{ID: 5, Title: "x"}, allFormats())
	assert.False(t, result.Success)
	assert.Nil(t, detail)

	// nothing written when the detail fetch fails
	entries, err := os.ReadDir(baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMaterializeRendererFailureSkipsOnlyPDF(t *testing.T) {
	baseDir := t.TempDir()
	src := &fakeSource{details: map[int64]*model.ArticleDetail{5: detailFixture(5)}}
	m := New(src, &fakeRenderer{fail: true}, "acme", baseDir, logging.Nop())

	result, _ := m.Materialize(model.ArticleStub{ID: 5, Title: "t"}, allFormats())
	require.True(t, result.Success)
	assert.NotContains(t, result.FormatsSaved, model.FormatPDF)
	assert.Contains(t, result.FormatsSaved, model.FormatHTML)
	assert.Contains(t, result.FormatsSaved, model.FormatJSON)
}

func TestMaterializeNilRenderer(t *testing.T) {
	baseDir := t.TempDir()
	src := &fakeSource{details: map[int64]*model.ArticleDetail{5: detailFixture(5)}}
	m := New(src, nil, "acme", baseDir, logging.Nop())

	result, _ := m.Materialize(model.ArticleStub{ID: 5, Title: "t"}, allFormats())
	require.True(t, result.Success)
	assert.NotContains(t, result.FormatsSaved, model.FormatPDF)
}

func TestMaterializeEmptyBody(t *testing.T) {
	baseDir := t.TempDir()
	detail := detailFixture(5)
	detail.Description = ""
	src := &fakeSource{details: map[int64]*model.ArticleDetail{5: detail}}
	m := New(src, &fakeRenderer{}, "acme", baseDir, logging.Nop())

	result, _ := m.Materialize(model.ArticleStub{ID: 5, Title: "t"}, allFormats())
	require.True(t, result.Success)

	// PDF, HTML and markdown require a non-empty body; text does not
	assert.ElementsMatch(t, []string{model.FormatText, model.FormatJSON}, result.FormatsSaved)

	folder := filepath.Join(baseDir, "5_t")
	data, err := os.ReadFile(filepath.Join(folder, "5_article.txt"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestDownloadAttachmentsUniquePaths(t *testing.T) {
	baseDir := t.TempDir()
	detail := detailFixture(5)
	detail.Attachments = []model.Attachment{
		{ID: 1, Name: "guide.pdf", AttachmentURL: "/a/1"},
		{ID: 2, Name: "guide.pdf", AttachmentURL: "/a/2"},
	}
	src := &fakeSource{details: map[int64]*model.ArticleDetail{5: detail}}
	m := New(src, nil, "acme", baseDir, logging.Nop())

	folder := filepath.Join(baseDir, "5_t")
	require.NoError(t, os.MkdirAll(filepath.Join(folder, "attachments"), 0755))

	total, successful := m.DownloadAttachments(detail, folder)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, successful)

	// identical names, distinct ids: two distinct destination paths
	require.Len(t, src.downloaded, 2)
	assert.NotEqual(t, src.downloaded[0], src.downloaded[1])
	for i, id := range []int64{1, 2} {
		assert.Equal(t, filepath.Join(folder, "attachments", fmt.Sprintf("%d_guide.pdf", id)), src.downloaded[i])
	}
}

func TestDownloadAttachmentsCountsFailures(t *testing.T) {
	detail := detailFixture(5)
	detail.Attachments = []model.Attachment{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}
	src := &fakeSource{failDownload: true}
	m := New(src, nil, "acme", t.TempDir(), logging.Nop())

	total, successful := m.DownloadAttachments(detail, t.TempDir())
	assert.Equal(t, 2, total)
	assert.Equal(t, 0, successful)
}
