package model

import "time"

// Article status values as returned by the Freshservice solutions API.
const (
	StatusPublished = 1
	StatusDraft     = 2
)

// StatusLabel maps the numeric article status to its display name.
// Unrecognized values map to "Unknown" rather than failing.
func StatusLabel(status int) string {
	switch status {
	case StatusPublished:
		return "Published"
	case StatusDraft:
		return "Draft"
	default:
		return "Unknown"
	}
}

type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	CreatedAt   string `json:"created_at" db:"created_at"`
}

type Folder struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	CreatedAt   string `json:"created_at" db:"created_at"`
	CategoryID  int64  `json:"category_id" db:"category_id"`
}

// ArticleStub is the listing-level article record. Stubs are never mutated
// after parsing; per-article download state lives in MaterializationResult.
type ArticleStub struct {
	ID         int64  `json:"id" db:"id"`
	Title      string `json:"title" db:"title"`
	Status     int    `json:"status" db:"status"`
	CreatedAt  string `json:"created_at" db:"created_at"`
	FolderID   int64  `json:"folder_id" db:"folder_id"`
	CategoryID int64  `json:"category_id" db:"category_id"`
}

// ArticleDetail is the full article record returned by the per-article
// endpoint. Description holds the rich-text (HTML) body.
type ArticleDetail struct {
	ArticleStub
	Description string       `json:"description"`
	UpdatedAt   string       `json:"updated_at"`
	ViewCount   int          `json:"view_count"`
	ThumbsUp    int          `json:"thumbs_up"`
	ThumbsDown  int          `json:"thumbs_down"`
	URL         string       `json:"url"`
	Tags        []string     `json:"tags"`
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	AttachmentURL string `json:"attachment_url"`
}

// Scope selects which parent an article listing is fetched under. Exactly one
// of the two references is set; use FolderScope or CategoryScope to build one.
type Scope struct {
	folderID   int64
	categoryID int64
}

func FolderScope(folderID int64) Scope {
	return Scope{folderID: folderID}
}

func CategoryScope(categoryID int64) Scope {
	return Scope{categoryID: categoryID}
}

// FolderID returns the folder reference, if this is a folder scope.
func (s Scope) FolderID() (int64, bool) {
	return s.folderID, s.folderID != 0
}

// CategoryID returns the category reference, if this is a category scope.
// A folder scope takes precedence when both were somehow supplied.
func (s Scope) CategoryID() (int64, bool) {
	if s.folderID != 0 {
		return 0, false
	}
	return s.categoryID, s.categoryID != 0
}

// Saved format names recorded per article.
const (
	FormatPDF      = "PDF"
	FormatHTML     = "HTML"
	FormatText     = "TEXT"
	FormatMarkdown = "MARKDOWN"
	FormatJSON     = "JSON"
)

// MaterializationResult records the outcome of downloading one article's
// content. Keyed by article ID in the extractor's outcome map.
type MaterializationResult struct {
	Success               bool     `json:"success"`
	FormatsSaved          []string `json:"formats_saved"`
	LocalFolder           string   `json:"local_folder"`
	AttachmentCount       int      `json:"attachment_count"`
	AttachmentsDownloaded int      `json:"attachments_downloaded"`
}

// RunSummary aggregates counters over one full extraction run.
type RunSummary struct {
	TotalArticles         int    `json:"total_articles"`
	SuccessfulArticles    int    `json:"successful_articles"`
	TotalAttachments      int    `json:"total_attachments"`
	SuccessfulAttachments int    `json:"successful_attachments"`
	DownloadDirectory     string `json:"download_directory"`
}

// MetadataRecord is the per-article metadata JSON written next to the
// rendered formats.
type MetadataRecord struct {
	ID                int64    `json:"id"`
	Title             string   `json:"title"`
	Status            string   `json:"status"`
	FolderID          int64    `json:"folder_id"`
	CategoryID        int64    `json:"category_id"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
	ViewCount         int      `json:"view_count"`
	ThumbsUp          int      `json:"thumbs_up"`
	ThumbsDown        int      `json:"thumbs_down"`
	URL               string   `json:"url"`
	Tags              []string `json:"tags"`
	AttachmentsCount  int      `json:"attachments_count"`
	DownloadTimestamp string   `json:"download_timestamp"`
}

// NewMetadataRecord extracts the metadata subset of a detailed article,
// stamping the extraction time.
func NewMetadataRecord(detail *ArticleDetail, now time.Time) MetadataRecord {
	tags := detail.Tags
	if tags == nil {
		tags = []string{}
	}
	return MetadataRecord{
		ID:                detail.ID,
		Title:             detail.Title,
		Status:            StatusLabel(detail.Status),
		FolderID:          detail.FolderID,
		CategoryID:        detail.CategoryID,
		CreatedAt:         detail.CreatedAt,
		UpdatedAt:         detail.UpdatedAt,
		ViewCount:         detail.ViewCount,
		ThumbsUp:          detail.ThumbsUp,
		ThumbsDown:        detail.ThumbsDown,
		URL:               detail.URL,
		Tags:              tags,
		AttachmentsCount:  len(detail.Attachments),
		DownloadTimestamp: now.Format(time.RFC3339),
	}
}

// SummaryReport is the bulk-export statistics record.
type SummaryReport struct {
	Timestamp string `json:"timestamp"`
	Summary   struct {
		TotalArticles     int `json:"total_articles"`
		PublishedArticles int `json:"published_articles"`
		DraftArticles     int `json:"draft_articles"`
	} `json:"summary"`
}

// NewSummaryReport tallies the stub list by status.
func NewSummaryReport(articles []ArticleStub, now time.Time) SummaryReport {
	var report SummaryReport
	report.Timestamp = now.Format(time.RFC3339)
	report.Summary.TotalArticles = len(articles)
	for _, a := range articles {
		switch a.Status {
		case StatusPublished:
			report.Summary.PublishedArticles++
		case StatusDraft:
			report.Summary.DraftArticles++
		}
	}
	return report
}

// FrontMatter is the YAML header written at the top of the per-article
// markdown rendering.
type FrontMatter struct {
	Title      string   `yaml:"title"`
	Status     string   `yaml:"status"`
	CreatedAt  string   `yaml:"created_at"`
	UpdatedAt  string   `yaml:"updated_at"`
	ExportedAt string   `yaml:"exported_at"`
	Source     string   `yaml:"source"`
	Tags       []string `yaml:"tags"`
}
