package barcode

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	results []Result
	err     error
}

func (s *stubBackend) Decode(_ context.Context, _ image.Image, _ Options) ([]Result, error) {
	return s.results, s.err
}

func TestScanPageReturnsPayloads(t *testing.T) {
	scanner := NewScannerWithBackend(&stubBackend{
		results: []Result{
			{Type: FormatQR, Value: "https://example.com/ticket/1"},
			{Type: FormatAztec, Value: "OTP123456"},
		},
	}, Options{})

	payloads := scanner.ScanPage(context.Background(), image.NewGray(image.Rect(0, 0, 10, 10)))
	assert.Equal(t, []string{"https://example.com/ticket/1", "OTP123456"}, payloads)
}

func TestScanPageAbsorbsDecodeErrors(t *testing.T) {
	scanner := NewScannerWithBackend(&stubBackend{err: errors.New("NotFoundException")}, Options{})
	payloads := scanner.ScanPage(context.Background(), image.NewGray(image.Rect(0, 0, 10, 10)))
	assert.Empty(t, payloads)
}

func TestScanPageNilImage(t *testing.T) {
	scanner := NewScanner()
	assert.Empty(t, scanner.ScanPage(context.Background(), nil))
}

func TestScanPageSkipsEmptyValues(t *testing.T) {
	scanner := NewScannerWithBackend(&stubBackend{
		results: []Result{{Type: FormatQR, Value: ""}, {Type: FormatQR, Value: "payload"}},
	}, Options{})
	payloads := scanner.ScanPage(context.Background(), image.NewGray(image.Rect(0, 0, 10, 10)))
	assert.Equal(t, []string{"payload"}, payloads)
}

// Round trip through the real backend: encode a QR code, then scan it.
func TestScannerDecodesGeneratedQR(t *testing.T) {
	const payload = "https://example.com/booking/abc123"

	writer := qrcode.NewQRCodeWriter()
	matrix, err := writer.Encode(payload, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	require.NoError(t, err)

	payloads := NewScanner().ScanPage(context.Background(), matrix)
	require.NotEmpty(t, payloads)
	assert.Equal(t, payload, payloads[0])
}

func TestNormalizeUpscalesSmallImages(t *testing.T) {
	scanner := NewScanner()

	small := image.NewGray(image.Rect(0, 0, 100, 50))
	out := scanner.normalize(small)
	assert.GreaterOrEqual(t, out.Bounds().Dx(), DefaultMinWidth)

	large := image.NewGray(image.Rect(0, 0, 1200, 800))
	assert.Equal(t, 1200, scanner.normalize(large).Bounds().Dx())
}

func TestNewScannerWithAppliesConfiguration(t *testing.T) {
	scanner := NewScannerWith(false, 300)
	assert.False(t, scanner.opts.TryHarder)
	assert.Equal(t, 300, scanner.minWidth)

	small := image.NewGray(image.Rect(0, 0, 100, 50))
	assert.Equal(t, 300, scanner.normalize(small).Bounds().Dx())

	// Wide enough images pass through untouched at the lower floor.
	assert.Equal(t, 400, scanner.normalize(image.NewGray(image.Rect(0, 0, 400, 200))).Bounds().Dx())
}

func TestNewScannerWithZeroWidthFallsBack(t *testing.T) {
	scanner := NewScannerWith(true, 0)
	assert.Equal(t, DefaultMinWidth, scanner.minWidth)
}
