package barcode

import (
	"context"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

// DefaultMinWidth is the default working resolution floor for decoding.
// Embedded ticket barcodes extracted at low resolution lose module
// separability, so anything narrower gets upscaled to roughly a 300 DPI
// rendition before decoding.
const DefaultMinWidth = 600

// Scanner decodes all 2D barcodes found in rendered page images.
type Scanner struct {
	backend  Backend
	opts     Options
	minWidth int
}

// NewScanner returns a scanner tuned for ticket documents: 2D symbologies
// only, exhaustive search, multiple symbols per page.
func NewScanner() *Scanner {
	return NewScannerWith(true, DefaultMinWidth)
}

// NewScannerWith returns a scanner with the decode effort and working
// resolution floor taken from configuration. A minWidth of zero or less
// falls back to DefaultMinWidth.
func NewScannerWith(tryHarder bool, minWidth int) *Scanner {
	if minWidth <= 0 {
		minWidth = DefaultMinWidth
	}
	return &Scanner{
		backend: NewBackend(),
		opts: Options{
			Formats:   []Format{FormatQR, FormatAztec, FormatDataMatrix, FormatPDF417},
			TryHarder: tryHarder,
			Multi:     true,
		},
		minWidth: minWidth,
	}
}

// NewScannerWithBackend returns a scanner using the given backend. Used by
// tests to substitute the decoder.
func NewScannerWithBackend(backend Backend, opts Options) *Scanner {
	return &Scanner{backend: backend, opts: opts, minWidth: DefaultMinWidth}
}

// ScanPage decodes every barcode in img and returns the raw payload
// strings, in decode order. Decoder errors (including "no code found") are
// absorbed: scanning must never abort document processing.
func (s *Scanner) ScanPage(ctx context.Context, img image.Image) []string {
	if img == nil {
		return nil
	}

	results, err := s.backend.Decode(ctx, s.normalize(img), s.opts)
	if err != nil {
		slog.Debug("barcode decode found nothing", "error", err)
		return nil
	}

	payloads := make([]string, 0, len(results))
	for _, r := range results {
		if r.Value != "" {
			payloads = append(payloads, r.Value)
		}
	}
	return payloads
}

// normalize converts img to grayscale and upscales small images so the
// binarizer sees enough pixels per barcode module.
func (s *Scanner) normalize(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dx() >= s.minWidth {
		return gray
	}
	return imaging.Resize(gray, s.minWidth, 0, imaging.Lanczos)
}
