// Package barcode locates and decodes 2D barcodes in rasterized ticket
// pages. Decoding is advisory: the scanner never fails document processing,
// it just reports zero results.
package barcode

import (
	"context"
	"image"
)

// Format represents a barcode symbology.
type Format int

const (
	FormatUnknown Format = iota
	FormatQR
	FormatDataMatrix
	FormatAztec
	FormatPDF417
)

// Options controls backend decoding behavior.
type Options struct {
	// Formats constrains the set of symbologies to search.
	Formats []Format

	// TryHarder enables more exhaustive search. Slower, but ticket scans
	// often have uneven contrast, so recall matters more than speed here.
	TryHarder bool

	// Multi enables multi-symbol detection in a single image.
	Multi bool
}

// Result represents a decoded barcode.
type Result struct {
	Type  Format
	Value string
}

// Backend is a pluggable barcode decoder implementation.
type Backend interface {
	Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error)
}
