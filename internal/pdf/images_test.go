package pdf

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageFromFilename(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		wantPage int
		wantErr  bool
	}{
		{"typical pdfcpu name", "document_1_Im0.png", 1, false},
		{"multi digit page", "document_12_Im3.jpg", 12, false},
		{"document name with digits later", "ticket_3_Im1.png", 3, false},
		{"no separator", "document.png", 0, true},
		{"no numeric segment", "document_ImA.png", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := parsePageFromFilename(tc.filename)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantPage, page)
		})
	}
}

func TestCollectExtractedImages(t *testing.T) {
	dir := t.TempDir()

	writePNG := func(name string) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}

	writePNG("document_1_Im0.png")
	writePNG("document_1_Im1.png")
	writePNG("document_2_Im0.png")
	// Not attributable to a page, must be skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	byPage, err := collectExtractedImages(dir)
	require.NoError(t, err)

	assert.Len(t, byPage[1], 2)
	assert.Len(t, byPage[2], 1)
	assert.Len(t, byPage, 2)
}

func TestExtractPageImagesInvalidDocument(t *testing.T) {
	_, err := ExtractPageImages([]byte("not a pdf"))
	assert.Error(t, err)
}
