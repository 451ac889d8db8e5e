package barcode

import (
	"context"
	"image"

	gozxing "github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/multi"
)

// NewBackend returns the default gozxing-backed decoder.
func NewBackend() Backend { return &gozxingBackend{} }

type gozxingBackend struct{}

func (b *gozxingBackend) Decode(_ context.Context, img image.Image, opts Options) ([]Result, error) {
	hints := make(map[gozxing.DecodeHintType]interface{})
	if len(opts.Formats) > 0 {
		var formats []gozxing.BarcodeFormat
		for _, f := range opts.Formats {
			if bf, ok := mapFormatToZXing(f); ok {
				formats = append(formats, bf)
			}
		}
		if len(formats) > 0 {
			hints[gozxing.DecodeHintType_POSSIBLE_FORMATS] = formats
		}
	}
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}

	source := gozxing.NewLuminanceSourceFromImage(img)
	bitmap, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(source))
	if err != nil {
		return nil, err
	}

	var results []*gozxing.Result
	if opts.Multi {
		reader := multi.NewGenericMultipleBarcodeReader(gozxing.NewMultiFormatReader())
		results, err = reader.DecodeMultiple(bitmap, hints)
	} else {
		reader := gozxing.NewMultiFormatReader()
		var r *gozxing.Result
		r, err = reader.Decode(bitmap, hints)
		if err == nil && r != nil {
			results = []*gozxing.Result{r}
		}
	}
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(results))
	for _, r := range results {
		out = append(out, Result{
			Type:  mapFormatFromZXing(r.GetBarcodeFormat()),
			Value: r.GetText(),
		})
	}
	return out, nil
}

func mapFormatToZXing(f Format) (gozxing.BarcodeFormat, bool) {
	switch f {
	case FormatQR:
		return gozxing.BarcodeFormat_QR_CODE, true
	case FormatDataMatrix:
		return gozxing.BarcodeFormat_DATA_MATRIX, true
	case FormatAztec:
		return gozxing.BarcodeFormat_AZTEC, true
	case FormatPDF417:
		return gozxing.BarcodeFormat_PDF_417, true
	default:
		return 0, false
	}
}

func mapFormatFromZXing(bf gozxing.BarcodeFormat) Format {
	switch bf {
	case gozxing.BarcodeFormat_QR_CODE:
		return FormatQR
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return FormatDataMatrix
	case gozxing.BarcodeFormat_AZTEC:
		return FormatAztec
	case gozxing.BarcodeFormat_PDF_417:
		return FormatPDF417
	default:
		return FormatUnknown
	}
}
