// Package convert renders an article's rich-text body into the output
// representations written to disk: plain text with structural cues, a styled
// HTML document shell for screen and print, and markdown with YAML front
// matter.
package convert

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"freshkb-cli/internal/model"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"gopkg.in/yaml.v3"
)

// structuralReplacement rewrites one markup construct into its plain-text
// convention. The order of the list matters: all of these must run before the
// generic tag-stripping pass, or the structure they encode is lost.
type structuralReplacement struct {
	pattern *regexp.Regexp
	text    string
}

var structuralReplacements = []structuralReplacement{
	{regexp.MustCompile(`(?i)<br\s*/?>`), "\n"},
	{regexp.MustCompile(`(?i)<p[^>]*>`), "\n"},
	{regexp.MustCompile(`(?i)</p>`), "\n\n"},
	{regexp.MustCompile(`(?i)<h[1-6][^>]*>`), "\n\n** "},
	{regexp.MustCompile(`(?i)</h[1-6]>`), " **\n\n"},
	{regexp.MustCompile(`(?i)<li[^>]*>`), "• "},
	{regexp.MustCompile(`(?i)</li>`), "\n"},
	{regexp.MustCompile(`(?i)</?[uo]l[^>]*>`), "\n"},
	{regexp.MustCompile(`(?i)</?strong>`), "**"},
	{regexp.MustCompile(`(?i)</?b>`), "**"},
	{regexp.MustCompile(`(?i)</?em>`), "*"},
	{regexp.MustCompile(`(?i)</?i>`), "*"},
	{regexp.MustCompile(`(?i)</?code>`), "`"},
	{regexp.MustCompile(`(?i)</?pre[^>]*>`), "\n```\n"},
	{regexp.MustCompile(`(?i)<blockquote[^>]*>`), "\n> "},
	{regexp.MustCompile(`(?i)</blockquote>`), "\n"},
}

var (
	anyTag     = regexp.MustCompile(`<[^>]+>`)
	blankRuns  = regexp.MustCompile(`\n\s*\n`)
	spaceRuns  = regexp.MustCompile(`[ \t]+`)
)

// ToPlainText converts a rich-text body to plain text, preserving structure
// via ASCII conventions: headings wrapped in ** **, bullets, > quotes, fenced
// code blocks. Empty input yields an empty string.
func ToPlainText(markup string) string {
	if markup == "" {
		return ""
	}

	text := markup
	for _, r := range structuralReplacements {
		text = r.pattern.ReplaceAllString(text, r.text)
	}

	text = anyTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = spaceRuns.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

const shellTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>%s</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 24px; }
    .header { border-bottom: 3px solid #007cba; padding-bottom: 12px; margin-bottom: 24px; }
    h1 { color: #007cba; font-size: 24pt; margin-bottom: 10px; }
    .metadata { background-color: #f8f9fa; border: 1px solid #e9ecef; border-radius: 5px; padding: 12px; margin-bottom: 20px; font-size: 10pt; }
    .metadata-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 8px; }
    .metadata-label { font-weight: bold; color: #555; }
    .content { margin-top: 10px; font-size: 11pt; }
    .content h2 { color: #007cba; font-size: 14pt; margin-top: 22px; margin-bottom: 10px; border-bottom: 1px solid #eee; padding-bottom: 5px; }
    .content h3 { color: #555; font-size: 12pt; margin-top: 18px; margin-bottom: 8px; }
    .content p { margin-bottom: 12px; text-align: justify; }
    .content ul, .content ol { margin-bottom: 12px; margin-left: 20px; }
    .content table { width: 100%%; border-collapse: collapse; margin-bottom: 15px; font-size: 9pt; }
    .content th, .content td { border: 1px solid #ddd; padding: 8px; text-align: left; }
    .content th { background-color: #f8f9fa; font-weight: bold; }
    .content img { max-width: 100%%; height: auto; margin: 10px 0; }
    .attachments-section { margin-top: 20px; padding: 12px; background-color: #f8f9fa; border-radius: 5px; border-left: 4px solid #007cba; }
    .attachments-title { font-weight: bold; margin-bottom: 8px; color: #007cba; }
    .footer { margin-top: 24px; padding-top: 12px; border-top: 1px solid #eee; font-size: 9pt; color: #666; text-align: center; }
    code { background-color: #f4f4f4; padding: 2px 4px; border-radius: 3px; font-family: 'Courier New', monospace; font-size: 9pt; }
    pre { background-color: #f8f9fa; padding: 10px; border-radius: 5px; overflow-x: auto; font-family: 'Courier New', monospace; font-size: 9pt; border: 1px solid #e9ecef; }
  </style>
</head>
<body>
  <div class="header"><h1>%s</h1></div>
  <div class="metadata">
    <div class="metadata-grid">
      <div><span class="metadata-label">Article ID:</span> %d</div>
      <div><span class="metadata-label">Status:</span> %s</div>
      <div><span class="metadata-label">Created:</span> %s</div>
      <div><span class="metadata-label">Updated:</span> %s</div>
      <div><span class="metadata-label">Views:</span> %d</div>
      <div><span class="metadata-label">Helpful Votes:</span> %d</div>
      <div><span class="metadata-label">Not Helpful:</span> %d</div>
      <div><span class="metadata-label">Attachments:</span> %d</div>
    </div>
  </div>
  <div class="content">%s</div>
  %s
  <div class="footer">
    <p>Knowledge Base Article &bull; %s.freshservice.com</p>
    <p>Downloaded on %s &bull; Article URL: %s</p>
  </div>
</body>
</html>
`

// DocumentShell wraps a rich-text body in the styled page template with the
// article's metadata block. The attachments listing is included only in the
// print variant, where the binary files themselves cannot travel along.
func DocumentShell(detail *model.ArticleDetail, body, domain string, forPrint bool, now time.Time) string {
	attachmentsSection := ""
	if forPrint && len(detail.Attachments) > 0 {
		var items strings.Builder
		for _, att := range detail.Attachments {
			name := att.Name
			if name == "" {
				name = "Unnamed"
			}
			items.WriteString(fmt.Sprintf("<div class=\"attachment-item\">• %s</div>", html.EscapeString(name)))
		}
		attachmentsSection = fmt.Sprintf(
			"<div class=\"attachments-section\">\n    <div class=\"attachments-title\">Article Attachments (%d):</div>\n    %s\n  </div>",
			len(detail.Attachments), items.String())
	}

	title := detail.Title
	if title == "" {
		title = "Untitled"
	}
	escTitle := html.EscapeString(title)

	return fmt.Sprintf(shellTemplate,
		escTitle,
		escTitle,
		detail.ID,
		model.StatusLabel(detail.Status),
		detail.CreatedAt,
		detail.UpdatedAt,
		detail.ViewCount,
		detail.ThumbsUp,
		detail.ThumbsDown,
		len(detail.Attachments),
		body,
		attachmentsSection,
		domain,
		now.Format("2006-01-02 15:04:05"),
		detail.URL,
	)
}

// ToMarkdown converts a rich-text body to markdown and prefixes the article's
// YAML front matter.
func ToMarkdown(detail *model.ArticleDetail, now time.Time) (string, error) {
	converter := md.NewConverter("", true, nil)
	body, err := converter.ConvertString(detail.Description)
	if err != nil {
		return "", fmt.Errorf("failed to convert body to markdown: %w", err)
	}

	front := model.FrontMatter{
		Title:      detail.Title,
		Status:     model.StatusLabel(detail.Status),
		CreatedAt:  detail.CreatedAt,
		UpdatedAt:  detail.UpdatedAt,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Source:     detail.URL,
		Tags:       detail.Tags,
	}
	yamlBytes, err := yaml.Marshal(front)
	if err != nil {
		return "", fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var content strings.Builder
	content.WriteString("---\n")
	content.Write(yamlBytes)
	content.WriteString("---\n\n")
	content.WriteString(strings.TrimSpace(body))
	content.WriteString("\n")
	return content.String(), nil
}
