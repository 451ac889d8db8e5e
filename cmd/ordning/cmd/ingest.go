package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KUKARAF/ordning/internal/pipeline"
)

// ingestCmd represents the ingest command.
var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf> [more files...]",
	Short: "Ingest ticket PDFs into the database",
	Long: `Process one or more ticket PDFs and store the extracted travel data.

Each file is fingerprinted before processing; files whose content was
already ingested are skipped. Unreadable files are stored as failed
records so they can be inspected and cleaned up later.

Examples:
  ordning ingest ticket.pdf
  ordning ingest ~/Downloads/*.pdf
  ordning ingest --format json ticket.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		format, _ := cmd.Flags().GetString("format")
		out := cmd.OutOrStdout()

		var failures int
		for _, ref := range args {
			t, err := svc.Ingest(cmd.Context(), ref)
			switch {
			case errors.Is(err, pipeline.ErrTicketExists):
				fmt.Fprintf(out, "%s: already ingested, skipping\n", ref)
				continue
			case err != nil:
				fmt.Fprintf(out, "%s: %v\n", ref, err)
				failures++
				continue
			}

			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(t); err != nil {
					return err
				}
				continue
			}

			if !t.Processed {
				fmt.Fprintf(out, "%s: stored as failed (%s)\n", ref, t.ErrorMessage)
				failures++
				continue
			}
			fmt.Fprintf(out, "%s: stored as ticket %d (%s)\n", ref, t.ID, describeTrip(t))
		}

		if failures > 0 {
			return fmt.Errorf("%d of %d files failed", failures, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
}
