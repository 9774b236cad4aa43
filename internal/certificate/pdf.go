package certificate

import (
	"context"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// PDFConverter turns rendered HTML into a PDF document. Conversion honours
// the context deadline; on cancellation nothing is returned, so a timed-out
// render can never end up half-stored.
type PDFConverter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
}

// wkhtmltopdfConverter implements PDFConverter by shelling out to the
// wkhtmltopdf binary.
type wkhtmltopdfConverter struct{}

// NewWkhtmltopdfConverter creates a PDFConverter backed by wkhtmltopdf.
func NewWkhtmltopdfConverter() PDFConverter {
	return &wkhtmltopdfConverter{}
}

func (c *wkhtmltopdfConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, err
	}

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.EnableLocalFileAccess.Set(false)
	pdfg.AddPage(page)

	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, err
	}

	return pdfg.Bytes(), nil
}
