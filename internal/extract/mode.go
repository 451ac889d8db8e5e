package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/KUKARAF/ordning/internal/ticket"
)

// modeKeywords maps each travel mode to its indicator words. Checked in
// fixed priority order: train beats bus beats flight beats ferry when a
// document mentions several.
var modeKeywords = []struct {
	mode     ticket.TravelMode
	keywords []string
}{
	{ticket.ModeTrain, []string{"zug", "train", "bahn"}},
	{ticket.ModeBus, []string{"bus"}},
	{ticket.ModeFlight, []string{"flug", "flight"}},
	{ticket.ModeFerry, []string{"fähre", "faehre", "ferry"}},
}

// TravelModeOf classifies text by case-insensitive keyword search. PDF text
// streams often carry decomposed umlauts, so the text is NFC-normalized
// before matching. No keyword match yields ModeUnknown, never an unset mode.
func TravelModeOf(text string) ticket.TravelMode {
	haystack := norm.NFC.String(strings.ToLower(text))
	for _, entry := range modeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(haystack, kw) {
				return entry.mode
			}
		}
	}
	return ticket.ModeUnknown
}
