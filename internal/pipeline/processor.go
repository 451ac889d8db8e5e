// Package pipeline converts raw ticket documents into stored ticket
// records. The Processor is the extract-and-assemble stage; the Service
// adds the deduplication gate and persistence.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/KUKARAF/ordning/internal/barcode"
	"github.com/KUKARAF/ordning/internal/extract"
	"github.com/KUKARAF/ordning/internal/fingerprint"
	"github.com/KUKARAF/ordning/internal/pdf"
	"github.com/KUKARAF/ordning/internal/source"
	"github.com/KUKARAF/ordning/internal/ticket"
)

// Processor runs the sequential extraction pipeline for one document:
// read bytes, fingerprint, extract text, scan barcodes, extract fields,
// assemble. It always produces a record; a failure to read the source
// yields a record marked unprocessed instead of an error.
type Processor struct {
	resolver source.Resolver
	scanner  *barcode.Scanner

	// Extraction stages, overridable in tests.
	extractText   func([]byte) string
	extractImages func([]byte) ([]pdf.PageImages, error)

	now func() time.Time
}

// NewProcessor builds a processor reading documents through resolver,
// using the default barcode scanner.
func NewProcessor(resolver source.Resolver) *Processor {
	return NewProcessorWithScanner(resolver, barcode.NewScanner())
}

// NewProcessorWithScanner builds a processor with a caller-configured
// barcode scanner.
func NewProcessorWithScanner(resolver source.Resolver, scanner *barcode.Scanner) *Processor {
	return &Processor{
		resolver:      resolver,
		scanner:       scanner,
		extractText:   pdf.ExtractText,
		extractImages: pdf.ExtractPageImages,
		now:           time.Now,
	}
}

// Process runs the full pipeline against ref. Sub-extractors degrade to
// absent values on their own; only a failed byte read (or other top-level
// failure) produces a failed record, with the display name still derived
// from ref and an empty fingerprint.
func (p *Processor) Process(ctx context.Context, ref string) ticket.Ticket {
	fileName := source.DisplayName(ref)

	data, err := p.resolver.Resolve(ctx, ref)
	if err != nil {
		slog.Warn("ticket processing failed", "file", fileName, "error", err)
		return ticket.Ticket{
			FileName:     fileName,
			FilePath:     ref,
			TravelMode:   ticket.ModeUnknown,
			ProcessedAt:  p.now(),
			Processed:    false,
			ErrorMessage: err.Error(),
		}
	}

	hash := fingerprint.Sum(data)
	text := p.extractText(data)
	payload := p.scanBarcodePayload(ctx, data)
	fields := extract.All(text)

	slog.Debug("ticket processed",
		"file", fileName,
		"mode", fields.TravelMode,
		"has_payload", payload != "",
		"text_len", len(text))

	return ticket.Ticket{
		FileName:          fileName,
		FilePath:          ref,
		FileHash:          hash,
		PassengerName:     fields.PassengerName,
		TravelMode:        fields.TravelMode,
		DepartureLocation: fields.DepartureLocation,
		ArrivalLocation:   fields.ArrivalLocation,
		DepartureTime:     fields.DepartureTime,
		ArrivalTime:       fields.ArrivalTime,
		TrainNumber:       fields.TrainNumber,
		SeatNumber:        fields.SeatNumber,
		CarriageNumber:    fields.CarriageNumber,
		BarcodePayload:    payload,
		RawText:           text,
		ProcessedAt:       p.now(),
		Processed:         true,
	}
}

// scanBarcodePayload scans every page image for barcodes and returns the
// first ticket-like payload in scan order. All pages are scanned before
// selection. Extraction or scan failures yield an empty payload.
func (p *Processor) scanBarcodePayload(ctx context.Context, data []byte) string {
	pages, err := p.extractImages(data)
	if err != nil {
		slog.Debug("page image extraction failed", "error", err)
		return ""
	}

	var candidates []string
	for _, page := range pages {
		for _, img := range page.Images {
			candidates = append(candidates, p.scanner.ScanPage(ctx, img)...)
		}
	}
	return extract.FirstTicketPayload(candidates)
}
