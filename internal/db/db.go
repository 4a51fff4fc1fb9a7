// Package db persists an extraction run into a local sqlite catalog. The
// catalog is a record of what a run saw and did; later commands read it for
// search and statistics.
package db

import (
	"fmt"
	"strings"
	"time"

	"freshkb-cli/internal/model"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS folders (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category_id INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		folder_id INTEGER NOT NULL DEFAULT 0,
		category_id INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		success INTEGER NOT NULL DEFAULT 0,
		formats_saved TEXT NOT NULL DEFAULT '',
		local_folder TEXT NOT NULL DEFAULT '',
		attachment_count INTEGER NOT NULL DEFAULT 0,
		attachments_downloaded INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		total_articles INTEGER NOT NULL,
		successful_articles INTEGER NOT NULL,
		total_attachments INTEGER NOT NULL,
		successful_attachments INTEGER NOT NULL,
		download_directory TEXT NOT NULL
	);
`

type Catalog struct {
	*sqlx.DB
}

func Open(path string) (*Catalog, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping catalog: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create catalog schema: %w", err)
		}
	}

	return &Catalog{DB: db}, nil
}

func (c *Catalog) Close() error {
	return c.DB.Close()
}

func (c *Catalog) UpsertCategory(category model.Category) error {
	_, err := c.Exec(`
		INSERT OR REPLACE INTO categories (id, name, description, created_at)
		VALUES (?, ?, ?, ?)
	`, category.ID, category.Name, category.Description, category.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert category %d: %w", category.ID, err)
	}
	return nil
}

func (c *Catalog) UpsertFolder(folder model.Folder) error {
	_, err := c.Exec(`
		INSERT OR REPLACE INTO folders (id, name, description, category_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, folder.ID, folder.Name, folder.Description, folder.CategoryID, folder.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert folder %d: %w", folder.ID, err)
	}
	return nil
}

// UpsertArticle records one article together with its download outcome.
// detail may be nil when the per-article fetch failed; the stub-level fields
// are still recorded so the failure shows up in the catalog.
func (c *Catalog) UpsertArticle(stub model.ArticleStub, detail *model.ArticleDetail, result model.MaterializationResult) error {
	var updatedAt, url, tags, content string
	if detail != nil {
		updatedAt = detail.UpdatedAt
		url = detail.URL
		tags = strings.Join(detail.Tags, ",")
		content = detail.Description
	}

	_, err := c.Exec(`
		INSERT OR REPLACE INTO articles (
			id, title, status, folder_id, category_id, created_at, updated_at,
			url, tags, content, success, formats_saved, local_folder,
			attachment_count, attachments_downloaded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, stub.ID, stub.Title, stub.Status, stub.FolderID, stub.CategoryID,
		stub.CreatedAt, updatedAt, url, tags, content,
		result.Success, strings.Join(result.FormatsSaved, ","), result.LocalFolder,
		result.AttachmentCount, result.AttachmentsDownloaded)
	if err != nil {
		return fmt.Errorf("failed to upsert article %d: %w", stub.ID, err)
	}
	return nil
}

func (c *Catalog) RecordRun(summary model.RunSummary, startedAt time.Time) error {
	_, err := c.Exec(`
		INSERT INTO runs (
			started_at, total_articles, successful_articles,
			total_attachments, successful_attachments, download_directory
		) VALUES (?, ?, ?, ?, ?, ?)
	`, startedAt.Format(time.RFC3339), summary.TotalArticles, summary.SuccessfulArticles,
		summary.TotalAttachments, summary.SuccessfulAttachments, summary.DownloadDirectory)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func (c *Catalog) ListCategories() ([]model.Category, error) {
	var categories []model.Category
	if err := c.Select(&categories, "SELECT id, name, description, created_at FROM categories ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListFolders returns the folders under one category, or every folder when
// categoryID is zero.
func (c *Catalog) ListFolders(categoryID int64) ([]model.Folder, error) {
	query := "SELECT id, name, description, category_id, created_at FROM folders"
	var args []interface{}
	if categoryID != 0 {
		query += " WHERE category_id = ?"
		args = append(args, categoryID)
	}
	query += " ORDER BY id"

	var folders []model.Folder
	if err := c.Select(&folders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// ArticleRow is the full catalog record for one article.
type ArticleRow struct {
	ID                    int64  `db:"id"`
	Title                 string `db:"title"`
	Status                int    `db:"status"`
	FolderID              int64  `db:"folder_id"`
	CategoryID            int64  `db:"category_id"`
	CreatedAt             string `db:"created_at"`
	UpdatedAt             string `db:"updated_at"`
	URL                   string `db:"url"`
	Tags                  string `db:"tags"`
	Content               string `db:"content"`
	Success               bool   `db:"success"`
	FormatsSaved          string `db:"formats_saved"`
	LocalFolder           string `db:"local_folder"`
	AttachmentCount       int    `db:"attachment_count"`
	AttachmentsDownloaded int    `db:"attachments_downloaded"`
}

func (c *Catalog) GetArticle(id int64) (*ArticleRow, error) {
	var row ArticleRow
	if err := c.Get(&row, "SELECT * FROM articles WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to get article %d: %w", id, err)
	}
	return &row, nil
}

// Stats summarizes the catalog contents for the stats command.
type Stats struct {
	Categories            int `db:"categories" json:"categories"`
	Folders               int `db:"folders" json:"folders"`
	Articles              int `db:"articles" json:"articles"`
	PublishedArticles     int `db:"published_articles" json:"published_articles"`
	DraftArticles         int `db:"draft_articles" json:"draft_articles"`
	SuccessfulArticles    int `db:"successful_articles" json:"successful_articles"`
	AttachmentsFound      int `db:"attachments_found" json:"attachments_found"`
	AttachmentsDownloaded int `db:"attachments_downloaded" json:"attachments_downloaded"`
	Runs                  int `db:"runs" json:"runs"`
}

func (c *Catalog) Stats() (Stats, error) {
	var stats Stats
	err := c.Get(&stats, `
		SELECT
			(SELECT COUNT(*) FROM categories) AS categories,
			(SELECT COUNT(*) FROM folders) AS folders,
			(SELECT COUNT(*) FROM articles) AS articles,
			(SELECT COUNT(*) FROM articles WHERE status = 1) AS published_articles,
			(SELECT COUNT(*) FROM articles WHERE status = 2) AS draft_articles,
			(SELECT COUNT(*) FROM articles WHERE success = 1) AS successful_articles,
			(SELECT COALESCE(SUM(attachment_count), 0) FROM articles) AS attachments_found,
			(SELECT COALESCE(SUM(attachments_downloaded), 0) FROM articles) AS attachments_downloaded,
			(SELECT COUNT(*) FROM runs) AS runs
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read catalog stats: %w", err)
	}
	return stats, nil
}

// CategoryStat is one row of the per-category article breakdown.
type CategoryStat struct {
	CategoryID int64   `db:"category_id" json:"category_id"`
	Name       *string `db:"name" json:"name"`
	Articles   int     `db:"articles" json:"articles"`
	Downloaded int     `db:"downloaded" json:"downloaded"`
}

func (c *Catalog) CategoryBreakdown() ([]CategoryStat, error) {
	var rows []CategoryStat
	err := c.Select(&rows, `
		SELECT
			a.category_id,
			c.name,
			COUNT(*) AS articles,
			SUM(CASE WHEN a.success = 1 THEN 1 ELSE 0 END) AS downloaded
		FROM articles a
		LEFT JOIN categories c ON a.category_id = c.id
		GROUP BY a.category_id, c.name
		ORDER BY a.category_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read category breakdown: %w", err)
	}
	return rows, nil
}
