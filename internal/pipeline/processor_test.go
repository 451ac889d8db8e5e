package pipeline

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KUKARAF/ordning/internal/barcode"
	"github.com/KUKARAF/ordning/internal/fingerprint"
	"github.com/KUKARAF/ordning/internal/pdf"
	"github.com/KUKARAF/ordning/internal/ticket"
)

const sampleTicketText = `Deutsche Bahn
ICE 1234
von Berlin Hbf
nach München Hbf
ab 15.12.2023 10:30
an 15.12.2023 14:45
Passagier: Max Mustermann
Wagen 12
Sitzplatz 23A`

// mapResolver resolves references from an in-memory map.
type mapResolver map[string][]byte

func (m mapResolver) Resolve(_ context.Context, ref string) ([]byte, error) {
	data, ok := m[ref]
	if !ok {
		return nil, errors.New("could not read file")
	}
	return data, nil
}

// queueBackend returns one prepared result set per decode call.
type queueBackend struct {
	queue [][]barcode.Result
}

func (q *queueBackend) Decode(_ context.Context, _ image.Image, _ barcode.Options) ([]barcode.Result, error) {
	if len(q.queue) == 0 {
		return nil, errors.New("NotFoundException")
	}
	head := q.queue[0]
	q.queue = q.queue[1:]
	return head, nil
}

func newTestProcessor(resolver mapResolver) *Processor {
	p := NewProcessor(resolver)
	// Ticket fixtures are plain text; bypass the PDF layer.
	p.extractText = func(data []byte) string { return string(data) }
	p.extractImages = func([]byte) ([]pdf.PageImages, error) { return nil, nil }
	return p
}

func TestProcessAssemblesRecord(t *testing.T) {
	data := []byte(sampleTicketText)
	p := newTestProcessor(mapResolver{"file:///tickets/ice.pdf": data})

	rec := p.Process(context.Background(), "file:///tickets/ice.pdf")

	assert.True(t, rec.Processed)
	assert.Empty(t, rec.ErrorMessage)
	assert.Equal(t, "ice.pdf", rec.FileName)
	assert.Equal(t, "file:///tickets/ice.pdf", rec.FilePath)
	assert.Equal(t, fingerprint.Sum(data), rec.FileHash)
	assert.Equal(t, sampleTicketText, rec.RawText)

	assert.Equal(t, ticket.ModeTrain, rec.TravelMode)
	assert.Equal(t, "Berlin Hbf", rec.DepartureLocation)
	assert.Equal(t, "München Hbf", rec.ArrivalLocation)
	assert.Equal(t, "Max Mustermann", rec.PassengerName)
	assert.Equal(t, "ICE 1234", rec.TrainNumber)
	assert.Equal(t, "12", rec.CarriageNumber)
	assert.Equal(t, "23A", rec.SeatNumber)
	require.NotNil(t, rec.DepartureTime)
	assert.Equal(t, time.Date(2023, 12, 15, 10, 30, 0, 0, time.UTC), *rec.DepartureTime)
	assert.False(t, rec.ProcessedAt.IsZero())
}

func TestProcessUnreadableSource(t *testing.T) {
	p := newTestProcessor(mapResolver{})

	rec := p.Process(context.Background(), "file:///tickets/broken.pdf")

	assert.False(t, rec.Processed)
	assert.NotEmpty(t, rec.ErrorMessage)
	assert.Equal(t, "broken.pdf", rec.FileName)
	assert.Empty(t, rec.FileHash)
	assert.Empty(t, rec.RawText)
	assert.Equal(t, ticket.ModeUnknown, rec.TravelMode)
	assert.False(t, rec.ProcessedAt.IsZero())
}

func TestProcessPicksFirstValidPayloadAcrossPages(t *testing.T) {
	p := newTestProcessor(mapResolver{"t.pdf": []byte("irrelevant")})

	img := image.NewGray(image.Rect(0, 0, 700, 700))
	p.extractImages = func([]byte) ([]pdf.PageImages, error) {
		return []pdf.PageImages{
			{PageNumber: 1, Images: []image.Image{img}},
			{PageNumber: 2, Images: []image.Image{img}},
		}, nil
	}
	p.scanner = barcode.NewScannerWithBackend(&queueBackend{queue: [][]barcode.Result{
		{{Type: barcode.FormatQR, Value: "short"}}, // page 1: noise, fails validation
		{{Type: barcode.FormatQR, Value: "https://book.example/t/42"}},
	}}, barcode.Options{})

	rec := p.Process(context.Background(), "t.pdf")
	assert.Equal(t, "https://book.example/t/42", rec.BarcodePayload)
}

func TestProcessAbsorbsImageExtractionFailure(t *testing.T) {
	p := newTestProcessor(mapResolver{"t.pdf": []byte(sampleTicketText)})
	p.extractImages = func([]byte) ([]pdf.PageImages, error) {
		return nil, errors.New("not a pdf")
	}

	rec := p.Process(context.Background(), "t.pdf")
	assert.True(t, rec.Processed)
	assert.Empty(t, rec.BarcodePayload)
	// Field extraction still ran.
	assert.Equal(t, ticket.ModeTrain, rec.TravelMode)
}
