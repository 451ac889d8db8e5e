package ticket

import "time"

// TravelMode is the kind of trip a ticket covers.
type TravelMode string

const (
	ModeTrain   TravelMode = "TRAIN"
	ModeBus     TravelMode = "BUS"
	ModeFlight  TravelMode = "FLIGHT"
	ModeFerry   TravelMode = "FERRY"
	ModeUnknown TravelMode = "UNKNOWN"
)

// Valid reports whether m is one of the known travel modes.
func (m TravelMode) Valid() bool {
	switch m {
	case ModeTrain, ModeBus, ModeFlight, ModeFerry, ModeUnknown:
		return true
	}
	return false
}

// Ticket is the canonical record produced by the processing pipeline and
// stored locally. Extracted fields are best-effort: an empty string or nil
// time means the extractor found nothing. Exactly one of
// {Processed=true, ErrorMessage==""} or {Processed=false, ErrorMessage!=""}
// holds for every assembled ticket.
type Ticket struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Provenance.
	FileName string `gorm:"column:file_name" json:"file_name"`
	FilePath string `gorm:"column:file_path" json:"file_path"`
	// FileHash is the SHA-256 hex digest of the raw document bytes and the
	// deduplication key. Empty when the source bytes could not be read.
	FileHash string `gorm:"column:file_hash;index" json:"file_hash"`

	// Extracted fields.
	PassengerName     string     `gorm:"column:passenger_name" json:"passenger_name,omitempty"`
	TravelMode        TravelMode `gorm:"column:travel_mode" json:"travel_mode"`
	DepartureLocation string     `gorm:"column:departure_location" json:"departure_location,omitempty"`
	ArrivalLocation   string     `gorm:"column:arrival_location" json:"arrival_location,omitempty"`
	DepartureTime     *time.Time `gorm:"column:departure_time" json:"departure_time,omitempty"`
	ArrivalTime       *time.Time `gorm:"column:arrival_time" json:"arrival_time,omitempty"`
	TrainNumber       string     `gorm:"column:train_number" json:"train_number,omitempty"`
	SeatNumber        string     `gorm:"column:seat_number" json:"seat_number,omitempty"`
	CarriageNumber    string     `gorm:"column:carriage_number" json:"carriage_number,omitempty"`
	BarcodePayload    string     `gorm:"column:barcode_payload" json:"barcode_payload,omitempty"`

	// RawText is the full extracted document text, kept verbatim so any
	// field can be re-derived later. Never mutated after assembly.
	RawText string `gorm:"column:raw_text" json:"raw_text,omitempty"`

	// Processing metadata.
	ProcessedAt  time.Time `gorm:"column:processed_at;index" json:"processed_at"`
	Processed    bool      `gorm:"column:processed" json:"processed"`
	ErrorMessage string    `gorm:"column:error_message" json:"error_message,omitempty"`
}

// TableName keeps the table name stable regardless of gorm pluralization rules.
func (Ticket) TableName() string { return "tickets" }

// Failed reports whether the ticket records a failed processing attempt.
func (t *Ticket) Failed() bool { return !t.Processed }
