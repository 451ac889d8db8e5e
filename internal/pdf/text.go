// Package pdf extracts linear text and embedded page images from PDF
// documents. Both operations are best-effort: a document that cannot be
// parsed yields empty output rather than an error, so downstream field
// extraction still runs and simply finds no matches.
package pdf

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/dslipak/pdf"
)

// ExtractText returns the concatenated plain text of every page of the
// document, in page order, with a newline between pages. It never fails:
// unparseable or text-free documents yield an empty string.
func ExtractText(data []byte) (text string) {
	// The underlying reader panics on some malformed documents; treat any
	// panic the same as a parse failure.
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("pdf text extraction panicked", "recovered", r)
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Debug("pdf text extraction failed", "error", err)
		return ""
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			slog.Debug("pdf page text extraction failed", "page", pageNum, "error", err)
			continue
		}
		if pageText == "" {
			continue
		}
		sb.WriteString(pageText)
		if !strings.HasSuffix(pageText, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
