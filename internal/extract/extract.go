// Package extract walks the category/folder/article hierarchy, drives the
// bulk exports and the per-article materialization, and aggregates the run's
// counters.
package extract

import (
	"time"

	"freshkb-cli/internal/export"
	"freshkb-cli/internal/freshservice"
	"freshkb-cli/internal/materialize"
	"freshkb-cli/internal/model"

	"go.uber.org/zap"
)

// SolutionsAPI is the slice of the API client the traversal needs.
type SolutionsAPI interface {
	Categories() ([]model.Category, freshservice.Outcome)
	Folders(categoryID int64) ([]model.Folder, freshservice.Outcome)
	Articles(scope model.Scope) ([]model.ArticleStub, freshservice.Outcome)
}

// Materializer downloads one article's content and attachments.
type Materializer interface {
	Materialize(stub model.ArticleStub, opts materialize.Options) (model.MaterializationResult, *model.ArticleDetail)
	DownloadAttachments(detail *model.ArticleDetail, folderPath string) (total, successful int)
}

// Recorder receives everything a run sees, for the optional local catalog.
type Recorder interface {
	UpsertCategory(category model.Category) error
	UpsertFolder(folder model.Folder) error
	UpsertArticle(stub model.ArticleStub, detail *model.ArticleDetail, result model.MaterializationResult) error
	RecordRun(summary model.RunSummary, startedAt time.Time) error
}

// Options configures one extraction run.
type Options struct {
	BaseDir             string
	ExportName          string
	DownloadAttachments bool
	Formats             materialize.Options
}

type Extractor struct {
	api      SolutionsAPI
	mat      Materializer
	exporter *export.Exporter
	display  *Display
	recorder Recorder // nil when no catalog is attached
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func New(api SolutionsAPI, mat Materializer, exporter *export.Exporter, display *Display, logger *zap.SugaredLogger) *Extractor {
	return &Extractor{
		api:      api,
		mat:      mat,
		exporter: exporter,
		display:  display,
		logger:   logger,
		now:      time.Now,
	}
}

// WithRecorder attaches a catalog recorder. Recording failures are logged
// and never interrupt a run.
func (e *Extractor) WithRecorder(recorder Recorder) *Extractor {
	e.recorder = recorder
	return e
}

func (e *Extractor) record(what string, err error) {
	if err != nil {
		e.logger.Warnf("Catalog write failed for %s: %v", what, err)
	}
}

// CollectArticles enumerates the full hierarchy and returns every article
// stub found. A category without folders falls back to a category-scoped
// listing. Listing failures degrade to empty slices upstream, so the walk
// simply continues past them.
func (e *Extractor) CollectArticles() []model.ArticleStub {
	categories, _ := e.api.Categories()
	e.display.Categories(categories)

	var all []model.ArticleStub
	for _, category := range categories {
		if e.recorder != nil {
			e.record("category", e.recorder.UpsertCategory(category))
		}
		folders, _ := e.api.Folders(category.ID)
		e.display.Folders(category.Name, folders)

		if len(folders) > 0 {
			for _, folder := range folders {
				if e.recorder != nil {
					e.record("folder", e.recorder.UpsertFolder(folder))
				}
				articles, _ := e.api.Articles(model.FolderScope(folder.ID))
				e.display.Articles("Articles in Folder: "+folder.Name, articles)
				all = append(all, articles...)
			}
		} else {
			articles, _ := e.api.Articles(model.CategoryScope(category.ID))
			e.display.Articles("Articles in Category: "+category.Name, articles)
			all = append(all, articles...)
		}
	}
	return all
}

// Run performs a complete extraction: collect every stub, export the list in
// bulk, then materialize article by article. A failing article is counted
// and skipped; the loop always advances. The returned outcome map is keyed by
// article id and holds each article's materialization result.
func (e *Extractor) Run(opts Options) (model.RunSummary, map[int64]model.MaterializationResult, export.Files) {
	startedAt := e.now()
	summary := model.RunSummary{DownloadDirectory: opts.BaseDir}
	outcomes := make(map[int64]model.MaterializationResult)

	articles := e.CollectArticles()
	summary.TotalArticles = len(articles)
	if len(articles) == 0 {
		e.logger.Warnf("No articles found or error occurred.")
		return summary, outcomes, export.Files{}
	}

	e.logger.Infof("Found %d articles in total.", len(articles))
	files := e.exporter.ExportAll(articles, opts.ExportName, e.now())

	e.logger.Infof("Starting download of %d articles to '%s'", len(articles), opts.BaseDir)

	for i, stub := range articles {
		e.logger.Infof("Processing article %d/%d: %s", i+1, len(articles), stub.Title)

		result, detail := e.mat.Materialize(stub, opts.Formats)
		if !result.Success {
			e.logger.Errorf("Failed to download article content for %s", stub.Title)
			outcomes[stub.ID] = result
			if e.recorder != nil {
				e.record("article", e.recorder.UpsertArticle(stub, detail, result))
			}
			continue
		}
		summary.SuccessfulArticles++
		e.logger.Infof("Successfully downloaded article content to %s", result.LocalFolder)

		if opts.DownloadAttachments && detail != nil && len(detail.Attachments) > 0 {
			e.logger.Infof("Found %d attachments for article %s", len(detail.Attachments), stub.Title)
			total, successful := e.mat.DownloadAttachments(detail, result.LocalFolder)
			result.AttachmentCount = total
			result.AttachmentsDownloaded = successful
			summary.TotalAttachments += total
			summary.SuccessfulAttachments += successful
			e.logger.Infof("Downloaded %d/%d attachments for article %s", successful, total, stub.Title)
		}
		outcomes[stub.ID] = result
		if e.recorder != nil {
			e.record("article", e.recorder.UpsertArticle(stub, detail, result))
		}
	}

	if e.recorder != nil {
		e.record("run", e.recorder.RecordRun(summary, startedAt))
	}
	e.logSummary(summary)
	return summary, outcomes, files
}

func (e *Extractor) logSummary(summary model.RunSummary) {
	e.logger.Infof("============================================================")
	e.logger.Infof("DOWNLOAD SUMMARY")
	e.logger.Infof("============================================================")
	e.logger.Infof("Total articles processed: %d", summary.TotalArticles)
	e.logger.Infof("Successful article downloads: %d", summary.SuccessfulArticles)
	e.logger.Infof("Total attachments found: %d", summary.TotalAttachments)
	e.logger.Infof("Successful attachment downloads: %d", summary.SuccessfulAttachments)
	e.logger.Infof("Download location: %s", summary.DownloadDirectory)
}
