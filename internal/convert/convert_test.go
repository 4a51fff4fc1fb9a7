package convert

import (
	"strings"
	"testing"
	"time"

	"freshkb-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPlainTextParagraphs(t *testing.T) {
	got := ToPlainText("<p>A</p><p>B</p>")
	assert.Equal(t, "A\n\nB", got)
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, ">")
}

func TestToPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"heading", "<h2>Setup</h2><p>Step one.</p>", "** Setup **\n\nStep one."},
		{"list items", "<ul><li>first</li><li>second</li></ul>", "• first\n• second"},
		{"bold and italic", "<p><strong>bold</strong> and <em>soft</em></p>", "**bold** and *soft*"},
		{"inline code", "<p>run <code>ls -la</code> now</p>", "run `ls -la` now"},
		{"blockquote", "<blockquote>careful here</blockquote>", "> careful here"},
		{"code fence", "<pre>x := 1</pre>", "```\nx := 1\n```"},
		{"entities decoded", "<p>a &amp; b &lt;tag&gt;</p>", "a & b <tag>"},
		{"line breaks", "one<br>two<br/>three", "one\ntwo\nthree"},
		{"attributes tolerated", `<p dir="ltr">A</p><p class="x">B</p>`, "A\n\nB"},
		{"unknown tags stripped", `<span data-x="1">word</span> <video>clip</video>`, "word clip"},
		{"whitespace collapsed", "<p>a   \t  b</p>", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToPlainText(tt.input))
		})
	}
}

func TestToPlainTextNoResidualMarkup(t *testing.T) {
	got := ToPlainText(`<div><h1 id="t">Title</h1><p>Body &amp; more</p><img src="x.png"></div>`)
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, "&amp;")
}

func sampleDetail() *model.ArticleDetail {
	return &model.ArticleDetail{
		ArticleStub: model.ArticleStub{
			ID:         42,
			Title:      "VPN <Setup>",
			Status:     model.StatusPublished,
			CreatedAt:  "2024-01-01T00:00:00Z",
			FolderID:   7,
			CategoryID: 3,
		},
		Description: "<p>Connect the client.</p>",
		UpdatedAt:   "2024-02-01T00:00:00Z",
		ViewCount:   10,
		ThumbsUp:    3,
		ThumbsDown:  1,
		URL:         "https://acme.freshservice.com/solution/articles/42",
		Tags:        []string{"vpn", "network"},
		Attachments: []model.Attachment{
			{ID: 1, Name: "client.conf", AttachmentURL: "/attachments/1"},
		},
	}
}

func TestDocumentShellScreen(t *testing.T) {
	detail := sampleDetail()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	out := DocumentShell(detail, detail.Description, "acme", false, now)

	assert.Contains(t, out, "VPN &lt;Setup&gt;")
	assert.Contains(t, out, "<p>Connect the client.</p>")
	assert.Contains(t, out, "Published")
	assert.Contains(t, out, "Article ID:</span> 42")
	assert.Contains(t, out, "acme.freshservice.com")
	// the rendered attachment listing is reserved for the print variant;
	// the stylesheet rule for it is always present
	assert.NotContains(t, out, `class="attachments-section"`)
	assert.NotContains(t, out, "Article Attachments")
}

func TestDocumentShellPrintListsAttachments(t *testing.T) {
	detail := sampleDetail()
	out := DocumentShell(detail, detail.Description, "acme", true, time.Now())

	assert.Contains(t, out, `class="attachments-section"`)
	assert.Contains(t, out, "Article Attachments (1)")
	assert.Contains(t, out, "client.conf")
}

func TestDocumentShellUnknownStatus(t *testing.T) {
	detail := sampleDetail()
	detail.Status = 9
	out := DocumentShell(detail, "", "acme", false, time.Now())
	assert.Contains(t, out, "Unknown")
}

func TestToMarkdown(t *testing.T) {
	detail := sampleDetail()
	detail.Description = "<h2>Steps</h2><p>Do <strong>this</strong> first.</p>"

	out, err := ToMarkdown(detail, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "---\n"))
	assert.Contains(t, out, "title: VPN <Setup>")
	assert.Contains(t, out, "status: Published")
	assert.Contains(t, out, "- vpn")
	assert.Contains(t, out, "## Steps")
	assert.Contains(t, out, "**this**")
}
