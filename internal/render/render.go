// Package render produces PDF bytes from a finished HTML document. The
// renderer shells out to wkhtmltopdf; when the binary is not installed the
// constructor fails and callers are expected to skip PDF output rather than
// abort the run.
package render

import (
	"fmt"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// Renderer turns a complete HTML document into PDF bytes.
type Renderer interface {
	Render(html string) ([]byte, error)
}

// WKHTMLRenderer renders through the wkhtmltopdf binary.
type WKHTMLRenderer struct{}

// NewWKHTMLRenderer verifies the wkhtmltopdf binary is reachable.
func NewWKHTMLRenderer() (*WKHTMLRenderer, error) {
	// NewPDFGenerator locates the binary; failing here lets the caller
	// degrade to the remaining formats up front instead of per article.
	if _, err := wkhtmltopdf.NewPDFGenerator(); err != nil {
		return nil, fmt.Errorf("wkhtmltopdf not available: %w", err)
	}
	return &WKHTMLRenderer{}, nil
}

func (r *WKHTMLRenderer) Render(html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to init pdf generator: %w", err)
	}

	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.MarginTop.Set(25)
	pdfg.MarginBottom.Set(25)
	pdfg.MarginLeft.Set(25)
	pdfg.MarginRight.Set(25)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.FooterRight.Set("[page] / [topage]")
	page.FooterFontSize.Set(8)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}
