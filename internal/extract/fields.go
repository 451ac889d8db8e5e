package extract

import (
	"regexp"
	"time"

	"github.com/KUKARAF/ordning/internal/ticket"
)

// Fields is the partial field set recovered from ticket text. Empty strings
// and nil times mean the corresponding extractor found nothing.
type Fields struct {
	PassengerName     string
	TravelMode        ticket.TravelMode
	DepartureLocation string
	ArrivalLocation   string
	DepartureTime     *time.Time
	ArrivalTime       *time.Time
	TrainNumber       string
	SeatNumber        string
	CarriageNumber    string
}

// All runs every extractor against text. Extractors are independent; each
// scans the full text and may fail on its own without affecting the others.
func All(text string) Fields {
	return Fields{
		PassengerName:     PassengerName(text),
		TravelMode:        TravelModeOf(text),
		DepartureLocation: DepartureLocation(text),
		ArrivalLocation:   ArrivalLocation(text),
		DepartureTime:     DepartureTime(text),
		ArrivalTime:       ArrivalTime(text),
		TrainNumber:       TrainNumber(text),
		SeatNumber:        SeatNumber(text),
		CarriageNumber:    CarriageNumber(text),
	}
}

// Pattern order encodes confidence: labeled, language-specific patterns
// first, generic fallbacks last.
var passengerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Passagier|Passenger|Name)\s*[:\s]*([A-Z][a-z]+\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`(?i)Fahrgast\s*[:\s]*([A-Z][a-z]+\s+[A-Z][a-z]+)`),
	regexp.MustCompile(`\b([A-Z][a-z]+\s+[A-Z][a-z]+)\b`),
}

// PassengerName returns the first capitalized name bigram found next to a
// passenger label, falling back to any capitalized bigram.
func PassengerName(text string) string {
	return firstGroup(passengerPatterns, text)
}

// capitalizedPhrase matches "Berlin", "Berlin Hbf", "Frankfurt am Main"
// style location phrases. Deliberately case-sensitive so the phrase stops at
// the next lowercase word (prepositions, sentence text).
const capitalizedPhrase = `([A-ZÄÖÜ][a-zäöüßA-Za-z]*(?:\s+[A-ZÄÖÜ][a-zäöüßA-Za-z]*)*)`

var departurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i:von|from|ab)\s+` + capitalizedPhrase),
	regexp.MustCompile(capitalizedPhrase + `\s*(?:Hbf|Hauptbahnhof|Airport|Flughafen)`),
}

var arrivalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i:nach|to)\s+` + capitalizedPhrase),
	regexp.MustCompile(`→\s*` + capitalizedPhrase),
}

// DepartureLocation extracts the origin from directional prepositions
// (von/from/ab) or a station-suffix pattern.
func DepartureLocation(text string) string {
	return firstGroup(departurePatterns, text)
}

// ArrivalLocation extracts the destination from nach/to or an arrow. The
// keyword set is disjoint from the departure set so the two extractors fail
// independently.
func ArrivalLocation(text string) string {
	return firstGroup(arrivalPatterns, text)
}

var trainNumberPattern = regexp.MustCompile(`(?:ICE|IC|EC|RE|RB|S\d+)\s*\d+|\b[A-Z]{2,4}\s*\d+\b`)

// TrainNumber matches known carrier-class prefixes followed by digits, or a
// generic short uppercase token plus digits.
func TrainNumber(text string) string {
	return trainNumberPattern.FindString(text)
}

var seatPattern = regexp.MustCompile(`(?:Sitzplatz|Platz|Seat)\s*[:\s]*([A-Z]\d+|\d+[A-Z]|\d+)`)

// SeatNumber extracts a seat identifier following a seat label.
func SeatNumber(text string) string {
	if m := seatPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

var carriagePattern = regexp.MustCompile(`(?:Wagen|Carriage|Coach)\s*[:\s]*(\d+)`)

// CarriageNumber extracts a carriage identifier following a carriage label.
func CarriageNumber(text string) string {
	if m := carriagePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// firstGroup returns the first capture group of the first pattern that
// matches anywhere in text.
func firstGroup(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
