package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/KUKARAF/ordning/internal/calendar"
	"github.com/KUKARAF/ordning/internal/ticket"
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored tickets",
	Long: `List tickets from the database, most recently processed first.

Filters can be combined with output formats:
  ordning list
  ordning list --mode train
  ordning list --location Berlin
  ordning list --from 2023-12-01 --to 2023-12-31
  ordning list --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		mode, _ := cmd.Flags().GetString("mode")
		location, _ := cmd.Flags().GetString("location")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		var tickets []ticket.Ticket
		switch {
		case mode != "":
			tickets, err = svc.ListByTravelMode(ticket.TravelMode(strings.ToUpper(mode)))
		case location != "":
			tickets, err = svc.ListByLocation(location)
		case from != "" || to != "":
			var start, end time.Time
			start, end, err = parseDayRange(from, to)
			if err != nil {
				return err
			}
			tickets, err = svc.ListByDateRange(start, end)
		default:
			tickets, err = svc.List()
		}
		if err != nil {
			return fmt.Errorf("failed to list tickets: %w", err)
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tickets)
		}

		printTicketTable(cmd.OutOrStdout(), tickets)
		return nil
	},
}

// showCmd represents the show command.
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single ticket in full",
	Long: `Show a single ticket as JSON.

With --calendar, the ticket is rendered as a calendar event instead.

Examples:
  ordning show 1
  ordning show 1 --calendar`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTicketID(args[0])
		if err != nil {
			return err
		}

		svc, closeStore, err := openService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		t, err := svc.Get(id)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if asCalendar, _ := cmd.Flags().GetBool("calendar"); asCalendar {
			event, err := calendar.EventFromTicket(t)
			if err != nil {
				return fmt.Errorf("cannot build calendar event for ticket %d: %w", id, err)
			}
			return enc.Encode(event)
		}

		return enc.Encode(t)
	},
}

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ticket database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		stats, err := svc.Stats()
		if err != nil {
			return fmt.Errorf("failed to compute statistics: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Total tickets:  %d\n", stats.Total)
		fmt.Fprintf(out, "Processed:      %d\n", stats.Processed)
		fmt.Fprintf(out, "Unprocessed:    %d\n", stats.Unprocessed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statsCmd)

	listCmd.Flags().String("mode", "", "filter by travel mode (train, bus, flight, ferry, unknown)")
	listCmd.Flags().String("location", "", "filter by departure or arrival location")
	listCmd.Flags().String("from", "", "filter by departure date, start (YYYY-MM-DD)")
	listCmd.Flags().String("to", "", "filter by departure date, end (YYYY-MM-DD)")
	listCmd.Flags().StringP("format", "f", "table", "output format (table, json)")
	showCmd.Flags().Bool("calendar", false, "render the ticket as a calendar event")
}

func parseTicketID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid ticket id: %s", raw)
	}
	return uint(id), nil
}

// parseDayRange parses YYYY-MM-DD bounds into an inclusive time range.
func parseDayRange(from, to string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return start, end, fmt.Errorf("invalid 'from' date: %s", from)
		}
		start = t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return start, end, fmt.Errorf("invalid 'to' date: %s", to)
		}
		// Inclusive: cover the whole day.
		end = t.Add(24*time.Hour - time.Second)
	}
	return start, end, nil
}

func printTicketTable(out io.Writer, tickets []ticket.Ticket) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODE\tROUTE\tDEPARTURE\tSTATUS\tFILE")
	for i := range tickets {
		t := &tickets[i]
		status := "ok"
		if !t.Processed {
			status = "failed"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.TravelMode, describeRoute(t), formatTime(t.DepartureTime), status, t.FileName)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "\n%d ticket(s)\n", len(tickets))
}

func describeRoute(t *ticket.Ticket) string {
	switch {
	case t.DepartureLocation != "" && t.ArrivalLocation != "":
		return t.DepartureLocation + " → " + t.ArrivalLocation
	case t.ArrivalLocation != "":
		return "→ " + t.ArrivalLocation
	case t.DepartureLocation != "":
		return t.DepartureLocation + " →"
	default:
		return "-"
	}
}

func describeTrip(t *ticket.Ticket) string {
	route := describeRoute(t)
	if route == "-" {
		return strings.ToLower(string(t.TravelMode))
	}
	return fmt.Sprintf("%s %s", strings.ToLower(string(t.TravelMode)), route)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
