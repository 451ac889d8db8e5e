package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// reprocessCmd represents the reprocess command.
var reprocessCmd = &cobra.Command{
	Use:   "reprocess <id>",
	Short: "Re-run extraction for a stored ticket",
	Long: `Re-read the ticket's source file and run extraction again, overwriting
the stored travel data. Useful after extraction improvements or when the
original processing failed.`,
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

		t, err := svc.Reprocess(cmd.Context(), id)
		if err != nil {
			return err
		}

		if !t.Processed {
			fmt.Fprintf(cmd.OutOrStdout(), "ticket %d reprocessed but failed: %s\n", t.ID, t.ErrorMessage)
			return nil
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	},
}

// deleteCmd represents the delete command.
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored ticket",
	Args:  cobra.ExactArgs(1),
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

		if err := svc.Delete(id); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "ticket %d deleted\n", id)
		return nil
	},
}

// cleanupCmd represents the cleanup command.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete all failed (unprocessed) tickets",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		before, err := svc.Stats()
		if err != nil {
			return err
		}

		if err := svc.CleanupFailed(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %d failed ticket(s)\n", before.Unprocessed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reprocessCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(cleanupCmd)
}
