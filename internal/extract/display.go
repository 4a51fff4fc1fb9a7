package extract

import (
	"fmt"
	"io"
	"strconv"

	"freshkb-cli/internal/model"

	"github.com/olekukonko/tablewriter"
)

// Display prints hierarchy listings as console tables. A nil writer
// suppresses all output.
type Display struct {
	w io.Writer
}

func NewDisplay(w io.Writer) *Display {
	return &Display{w: w}
}

func (d *Display) Categories(categories []model.Category) {
	if d == nil || d.w == nil {
		return
	}
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, c.Description})
	}
	d.render("Categories", []string{"ID", "Name", "Description"}, rows)
}

func (d *Display) Folders(categoryName string, folders []model.Folder) {
	if d == nil || d.w == nil {
		return
	}
	rows := make([][]string, 0, len(folders))
	for _, f := range folders {
		rows = append(rows, []string{strconv.FormatInt(f.ID, 10), f.Name, f.Description})
	}
	d.render("Folders in Category: "+categoryName, []string{"ID", "Name", "Description"}, rows)
}

func (d *Display) Articles(title string, articles []model.ArticleStub) {
	if d == nil || d.w == nil {
		return
	}
	rows := make([][]string, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, []string{strconv.FormatInt(a.ID, 10), a.Title, model.StatusLabel(a.Status)})
	}
	d.render(title, []string{"ID", "Title", "Status"}, rows)
}

func (d *Display) render(title string, headers []string, rows [][]string) {
	fmt.Fprintf(d.w, "\n=== %s ===\n", title)
	if len(rows) == 0 {
		fmt.Fprintln(d.w, "(none)")
		return
	}
	table := tablewriter.NewWriter(d.w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}
