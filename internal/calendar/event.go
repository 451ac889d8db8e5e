// Package calendar maps processed tickets onto calendar event models
// suitable for export to an external calendar service.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KUKARAF/ordning/internal/ticket"
)

// Transparency controls whether an event blocks time on the calendar.
type Transparency string

const (
	TransparencyOpaque      Transparency = "OPAQUE"
	TransparencyTransparent Transparency = "TRANSPARENT"
)

// Visibility is the sharing level of an event.
type Visibility string

const (
	VisibilityDefault Visibility = "DEFAULT"
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Attendee is a person invited to an event.
type Attendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Organizer   bool   `json:"organizer,omitempty"`
}

// Attachment references a file linked to an event.
type Attachment struct {
	Title    string `json:"title"`
	FileURL  string `json:"fileUrl,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// Event is a calendar entry derived from a ticket.
type Event struct {
	ID              string       `json:"id"`
	TicketID        uint         `json:"ticketId"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	StartTime       time.Time    `json:"startTime"`
	EndTime         time.Time    `json:"endTime"`
	Location        string       `json:"location,omitempty"`
	Timezone        string       `json:"timezone"`
	ReminderMinutes []int        `json:"reminderMinutes,omitempty"`
	Attendees       []Attendee   `json:"attendees,omitempty"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	Transparency    Transparency `json:"transparency"`
	Visibility      Visibility   `json:"visibility"`
}

// defaultDuration is assumed when a ticket has no arrival time.
const defaultDuration = 2 * time.Hour

// ErrNoDeparture is returned when a ticket carries no departure time,
// so no point on the calendar can be picked for it.
var ErrNoDeparture = errors.New("ticket has no departure time")

// EventFromTicket builds a calendar event for a processed ticket. The event
// starts at the departure time and ends at the arrival time when known,
// otherwise two hours later.
func EventFromTicket(t *ticket.Ticket) (*Event, error) {
	if t.DepartureTime == nil {
		return nil, ErrNoDeparture
	}

	start := *t.DepartureTime
	end := start.Add(defaultDuration)
	if t.ArrivalTime != nil && t.ArrivalTime.After(start) {
		end = *t.ArrivalTime
	}

	ev := &Event{
		ID:              uuid.NewString(),
		TicketID:        t.ID,
		Title:           eventTitle(t),
		Description:     eventDescription(t),
		StartTime:       start,
		EndTime:         end,
		Location:        t.DepartureLocation,
		Timezone:        start.Location().String(),
		ReminderMinutes: []int{60},
		Transparency:    TransparencyOpaque,
		Visibility:      VisibilityPrivate,
	}
	if t.FileName != "" {
		ev.Attachments = []Attachment{{
			Title:    t.FileName,
			FileURL:  t.FilePath,
			MimeType: "application/pdf",
		}}
	}
	return ev, nil
}

func eventTitle(t *ticket.Ticket) string {
	label := modeLabel(t.TravelMode)
	switch {
	case t.DepartureLocation != "" && t.ArrivalLocation != "":
		return fmt.Sprintf("%s: %s → %s", label, t.DepartureLocation, t.ArrivalLocation)
	case t.ArrivalLocation != "":
		return fmt.Sprintf("%s to %s", label, t.ArrivalLocation)
	case t.DepartureLocation != "":
		return fmt.Sprintf("%s from %s", label, t.DepartureLocation)
	default:
		return label
	}
}

func eventDescription(t *ticket.Ticket) string {
	var lines []string
	if t.PassengerName != "" {
		lines = append(lines, "Passenger: "+t.PassengerName)
	}
	if t.TrainNumber != "" {
		lines = append(lines, "Connection: "+t.TrainNumber)
	}
	if t.CarriageNumber != "" {
		lines = append(lines, "Carriage: "+t.CarriageNumber)
	}
	if t.SeatNumber != "" {
		lines = append(lines, "Seat: "+t.SeatNumber)
	}
	return strings.Join(lines, "\n")
}

func modeLabel(mode ticket.TravelMode) string {
	switch mode {
	case ticket.ModeTrain:
		return "Train"
	case ticket.ModeBus:
		return "Bus"
	case ticket.ModeFlight:
		return "Flight"
	case ticket.ModeFerry:
		return "Ferry"
	default:
		return "Trip"
	}
}
