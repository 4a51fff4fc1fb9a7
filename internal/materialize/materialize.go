// Package materialize turns one article stub into its on-disk form: a
// per-article directory holding the rendered formats, a metadata record, and
// the article's attachments.
package materialize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"freshkb-cli/internal/convert"
	"freshkb-cli/internal/freshservice"
	"freshkb-cli/internal/model"
	"freshkb-cli/internal/render"
	"freshkb-cli/internal/util"

	"go.uber.org/zap"
)

// ArticleSource is the slice of the API client the materializer needs.
type ArticleSource interface {
	ArticleDetail(id int64) (*model.ArticleDetail, freshservice.Outcome)
	DownloadAttachment(att model.Attachment, destPath string) bool
}

// Options selects which formats are written per article.
type Options struct {
	SavePDF      bool
	SaveHTML     bool
	SaveText     bool
	SaveMarkdown bool
}

type Materializer struct {
	api      ArticleSource
	renderer render.Renderer // nil when PDF rendering is unavailable
	domain   string
	baseDir  string
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func New(api ArticleSource, renderer render.Renderer, domain, baseDir string, logger *zap.SugaredLogger) *Materializer {
	return &Materializer{
		api:      api,
		renderer: renderer,
		domain:   domain,
		baseDir:  baseDir,
		logger:   logger,
		now:      time.Now,
	}
}

// FolderName derives the per-article directory name. The numeric id keeps it
// unique even when titles collide or sanitize down to nothing.
func FolderName(id int64, title string) string {
	if title == "" {
		title = fmt.Sprintf("article_%d", id)
	}
	return fmt.Sprintf("%d_%s", id, util.SanitizeFilename(title))
}

// Materialize fetches the article's detail and writes the selected formats
// plus the metadata record into the article's directory. PDF rendering is
// best-effort: its failure skips the format, not the article. Any other write
// failure fails the whole article. The fetched detail is returned so the
// caller can download attachments without another round trip.
func (m *Materializer) Materialize(stub model.ArticleStub, opts Options) (model.MaterializationResult, *model.ArticleDetail) {
	var result model.MaterializationResult

	detail, _ := m.api.ArticleDetail(stub.ID)
	if detail == nil {
		m.logger.Errorf("Could not get detailed content for article %d", stub.ID)
		return result, nil
	}

	folderPath := filepath.Join(m.baseDir, FolderName(stub.ID, stub.Title))
	if err := os.MkdirAll(filepath.Join(folderPath, "attachments"), 0755); err != nil {
		m.logger.Errorf("Error creating folder for article %d: %v", stub.ID, err)
		return result, nil
	}
	result.LocalFolder = folderPath
	result.AttachmentCount = len(detail.Attachments)

	body := detail.Description
	now := m.now()

	if opts.SavePDF && body != "" {
		if m.renderer == nil {
			m.logger.Errorf("PDF renderer not available; skipping PDF generation.")
		} else {
			pdfPath := filepath.Join(folderPath, fmt.Sprintf("%d_article.pdf", stub.ID))
			shell := convert.DocumentShell(detail, body, m.domain, true, now)
			if pdfBytes, err := m.renderer.Render(shell); err != nil {
				m.logger.Errorf("Error generating PDF for article %d: %v", stub.ID, err)
			} else if err := os.WriteFile(pdfPath, pdfBytes, 0644); err != nil {
				m.logger.Errorf("Error writing PDF for article %d: %v", stub.ID, err)
			} else {
				result.FormatsSaved = append(result.FormatsSaved, model.FormatPDF)
				m.logger.Infof("Saved PDF article: %s", pdfPath)
			}
		}
	}

	if opts.SaveHTML && body != "" {
		htmlPath := filepath.Join(folderPath, fmt.Sprintf("%d_article.html", stub.ID))
		shell := convert.DocumentShell(detail, body, m.domain, false, now)
		if err := os.WriteFile(htmlPath, []byte(shell), 0644); err != nil {
			m.logger.Errorf("Error writing HTML for article %d: %v", stub.ID, err)
			return result, nil
		}
		result.FormatsSaved = append(result.FormatsSaved, model.FormatHTML)
		m.logger.Infof("Saved HTML article: %s", htmlPath)
	}

	if opts.SaveText {
		// text is written even for an empty body
		textPath := filepath.Join(folderPath, fmt.Sprintf("%d_article.txt", stub.ID))
		if err := os.WriteFile(textPath, []byte(convert.ToPlainText(body)), 0644); err != nil {
			m.logger.Errorf("Error writing text for article %d: %v", stub.ID, err)
			return result, nil
		}
		result.FormatsSaved = append(result.FormatsSaved, model.FormatText)
		m.logger.Infof("Saved text article: %s", textPath)
	}

	if opts.SaveMarkdown && body != "" {
		mdPath := filepath.Join(folderPath, fmt.Sprintf("%d_article.md", stub.ID))
		content, err := convert.ToMarkdown(detail, now)
		if err != nil {
			m.logger.Errorf("Error converting article %d to markdown: %v", stub.ID, err)
		} else if err := os.WriteFile(mdPath, []byte(content), 0644); err != nil {
			m.logger.Errorf("Error writing markdown for article %d: %v", stub.ID, err)
			return result, nil
		} else {
			result.FormatsSaved = append(result.FormatsSaved, model.FormatMarkdown)
			m.logger.Infof("Saved markdown article: %s", mdPath)
		}
	}

	metaPath := filepath.Join(folderPath, fmt.Sprintf("%d_metadata.json", stub.ID))
	metaBytes, err := json.MarshalIndent(model.NewMetadataRecord(detail, now), "", "  ")
	if err != nil {
		m.logger.Errorf("Error building metadata for article %d: %v", stub.ID, err)
		return result, nil
	}
	if err := os.WriteFile(metaPath, metaBytes, 0644); err != nil {
		m.logger.Errorf("Error writing metadata for article %d: %v", stub.ID, err)
		return result, nil
	}
	result.FormatsSaved = append(result.FormatsSaved, model.FormatJSON)
	m.logger.Infof("Saved article metadata: %s", metaPath)

	result.Success = true
	return result, detail
}

// DownloadAttachments streams every attachment of a detailed article into the
// article folder's attachments/ subdirectory. Destination names are keyed by
// attachment id, so duplicate names within one article cannot collide.
func (m *Materializer) DownloadAttachments(detail *model.ArticleDetail, folderPath string) (total, successful int) {
	for _, att := range detail.Attachments {
		name := att.Name
		if name == "" {
			name = "unknown"
		}
		filename := fmt.Sprintf("%d_%s", att.ID, util.SanitizeFilename(name))
		destPath := filepath.Join(folderPath, "attachments", filename)
		total++
		if m.api.DownloadAttachment(att, destPath) {
			successful++
		}
	}
	return total, successful
}
