// Package search queries the local run catalog.
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"freshkb-cli/internal/db"
	"freshkb-cli/internal/model"
)

type Search struct {
	catalog *db.Catalog
	out     io.Writer
}

type Options struct {
	Query      string
	Field      string
	Limit      int
	JSONOutput bool
}

// Result is one catalog row matched by a search.
type Result struct {
	ID       int64   `json:"id" db:"id"`
	Title    string  `json:"title" db:"title"`
	Status   int     `json:"-" db:"status"`
	Category *string `json:"category" db:"category"`
	Folder   *string `json:"folder" db:"folder"`
	Tags     string  `json:"tags" db:"tags"`
	URL      string  `json:"url" db:"url"`
	Success  bool    `json:"downloaded" db:"success"`
}

func New(catalog *db.Catalog, out io.Writer) *Search {
	return &Search{catalog: catalog, out: out}
}

// Run executes the search and prints the results as a table, or as JSON when
// requested.
func (s *Search) Run(opts Options) error {
	if opts.Query == "" {
		return fmt.Errorf("search query is required")
	}

	results, err := s.Results(opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if opts.JSONOutput {
		return s.outputJSON(results)
	}
	return s.outputTable(results)
}

// Results matches articles case-insensitively against one field, or against
// every searchable field when no field is given.
func (s *Search) Results(opts Options) ([]Result, error) {
	baseQuery := `
		SELECT
			a.id,
			a.title,
			a.status,
			c.name AS category,
			f.name AS folder,
			a.tags,
			a.url,
			a.success
		FROM articles a
		LEFT JOIN folders f ON a.folder_id = f.id
		LEFT JOIN categories c ON a.category_id = c.id
	`

	var condition string
	var args []interface{}
	pattern := "%" + opts.Query + "%"

	switch opts.Field {
	case "title":
		condition = "a.title LIKE ? COLLATE NOCASE"
		args = append(args, pattern)
	case "content":
		condition = "a.content LIKE ? COLLATE NOCASE"
		args = append(args, pattern)
	case "tags":
		condition = "a.tags LIKE ? COLLATE NOCASE"
		args = append(args, pattern)
	case "category":
		condition = "c.name LIKE ? COLLATE NOCASE"
		args = append(args, pattern)
	case "folder":
		condition = "f.name LIKE ? COLLATE NOCASE"
		args = append(args, pattern)
	case "":
		condition = `(a.title LIKE ? COLLATE NOCASE OR a.content LIKE ? COLLATE NOCASE
			OR a.tags LIKE ? COLLATE NOCASE OR c.name LIKE ? COLLATE NOCASE
			OR f.name LIKE ? COLLATE NOCASE)`
		args = append(args, pattern, pattern, pattern, pattern, pattern)
	default:
		return nil, fmt.Errorf("invalid field: %s", opts.Field)
	}

	query := baseQuery + " WHERE " + condition + " ORDER BY a.id"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var results []Result
	if err := s.catalog.Select(&results, query, args...); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Search) outputJSON(results []Result) error {
	encoder := json.NewEncoder(s.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func (s *Search) outputTable(results []Result) error {
	if len(results) == 0 {
		fmt.Fprintln(s.out, "No results found.")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tCATEGORY\tFOLDER\tTAGS")
	for _, result := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			result.ID,
			truncate(result.Title, 50),
			model.StatusLabel(result.Status),
			deref(result.Category),
			deref(result.Folder),
			truncate(result.Tags, 30),
		)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
