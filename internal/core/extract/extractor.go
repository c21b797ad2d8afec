// Package extract turns raw sources (PDF bytes, YouTube URLs) into
// normalized plain text plus a best-effort title. Extraction only reads
// the external source; nothing is written anywhere.
package extract

import (
	"context"
	"net/http"
	"time"

	"github.com/okechi-dev/summarly/internal/core"
	"github.com/okechi-dev/summarly/internal/core/errs"
	"github.com/okechi-dev/summarly/internal/models"
)

var _ core.SourceExtractor = (*Extractor)(nil)

// Extractor dispatches on the source tag. The tag decides the strategy;
// byte sniffing is only ever used to validate the claimed format.
type Extractor struct {
	pdf *PDFExtractor
	yt  *YouTubeExtractor
}

func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Extractor{
		pdf: NewPDFExtractor(),
		yt:  NewYouTubeExtractor(client),
	}
}

func (e *Extractor) Extract(ctx context.Context, src core.Source) (*core.ExtractedContent, error) {
	switch src.Kind {
	case models.SourcePDF:
		return e.pdf.Extract(ctx, src.Bytes, src.FileName)
	case models.SourceYouTube:
		return e.yt.Extract(ctx, src.URL)
	default:
		return nil, errs.New(errs.InvalidSource, "unknown source kind %q", src.Kind)
	}
}
