package pdf

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageImages holds the embedded raster images of a single PDF page.
type PageImages struct {
	PageNumber int
	Images     []image.Image
}

// ExtractPageImages extracts the embedded images of every page, grouped by
// page and ordered by page number. Barcode scanning consumes these in page
// order so the first valid payload is deterministic across runs.
func ExtractPageImages(data []byte) ([]PageImages, error) {
	// pdfcpu's extract API works on files, so stage the document and the
	// extracted images in a temp directory.
	tempDir, err := os.MkdirTemp("", "ordning-extract-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	docPath := filepath.Join(tempDir, "document.pdf")
	if err := os.WriteFile(docPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to stage document: %w", err)
	}

	outDir := filepath.Join(tempDir, "images")
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	if err := api.ExtractImagesFile(docPath, outDir, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	byPage, err := collectExtractedImages(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load extracted images: %w", err)
	}

	pages := make([]PageImages, 0, len(byPage))
	for pageNum, images := range byPage {
		pages = append(pages, PageImages{PageNumber: pageNum, Images: images})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })
	return pages, nil
}

// collectExtractedImages walks dir and groups decodable images by page
// number, expecting pdfcpu's file naming.
func collectExtractedImages(dir string) (map[int][]image.Image, error) {
	result := make(map[int][]image.Image)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		pageNum, err := parsePageFromFilename(info.Name())
		if err != nil {
			// Skip files we can't attribute to a page.
			return nil
		}

		img, err := loadImageFile(path)
		if err != nil {
			// Skip undecodable images.
			return nil
		}
		result[pageNum] = append(result[pageNum], img)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // G304: path is inside our own temp dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	return img, err
}

// parsePageFromFilename extracts the page number from a pdfcpu extracted
// image filename such as document_1_Im0.png.
func parsePageFromFilename(filename string) (int, error) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return 0, errors.New("unexpected extracted image filename")
	}
	// The page number is the first numeric segment after the document name.
	for _, part := range parts[1:] {
		if pageNum, err := strconv.Atoi(part); err == nil {
			return pageNum, nil
		}
	}
	return 0, errors.New("no page number in filename")
}
