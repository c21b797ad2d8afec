package extract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/core/errs"
)

// PDFExtractor validates PDF bytes structurally and extracts the text layer
// page by page. Client-supplied content-type labels are never trusted; the
// bytes themselves must parse as a PDF.
type PDFExtractor struct {
	conf *model.Configuration
}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{conf: model.NewDefaultConfiguration()}
}

// Extract returns the normalized text of all pages joined with page-boundary
// markers, plus a title derived from the filename or the first heading.
func (e *PDFExtractor) Extract(ctx context.Context, raw []byte, fileName string) (*core.ExtractedContent, error) {
	if len(raw) == 0 {
		return nil, errs.New(errs.InvalidFormat, "empty payload")
	}

	pdfCtx, err := api.ReadContext(bytes.NewReader(raw), e.conf)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidFormat, fmt.Errorf("parse pdf: %w", err))
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, errs.Wrap(errs.InvalidFormat, fmt.Errorf("validate pdf: %w", err))
	}
	if pdfCtx.Encrypt != nil {
		return nil, errs.New(errs.UnreadableDocument, "document is encrypted")
	}

	res, err := docconv.Convert(bytes.NewReader(raw), "application/pdf", false)
	if err != nil {
		return nil, errs.Wrap(errs.UnreadableDocument, fmt.Errorf("extract text layer: %w", err))
	}

	text := joinPages(splitPages(res.Body))
	if text == "" {
		// Structurally valid but nothing to read, e.g. a scanned image-only PDF.
		return nil, errs.New(errs.UnreadableDocument, "no extractable text layer")
	}

	title := titleFromFileName(fileName)
	if title == "" {
		title = firstHeading(text)
	}
	if title == "" {
		title = "Untitled document"
	}

	return &core.ExtractedContent{Text: text, Title: title, Pages: pdfCtx.PageCount}, nil
}

// splitPages separates the converter output on form feeds, the page
// delimiter pdftotext emits, and normalizes each page independently.
func splitPages(body string) []string {
	parts := strings.Split(body, "\f")
	pages := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = NormalizeText(p); p != "" {
			pages = append(pages, p)
		}
	}
	return pages
}

func joinPages(pages []string) string {
	if len(pages) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			fmt.Fprintf(&b, "\n\n--- Page %d ---\n\n", i+1)
		}
		b.WriteString(p)
	}
	return b.String()
}

func titleFromFileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		return ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	return strings.TrimSpace(base)
}
