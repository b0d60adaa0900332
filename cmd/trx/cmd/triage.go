package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	triageStatus string
	triageNotes  string
)

var triageCmd = &cobra.Command{
	Use:   "triage <asset-id>",
	Short: "Set an asset's triage status and notes",
	Long: `Records the triage verdict for an asset, for example:
  trx triage 42 --status reviewed --notes "rate limited, low impact"
  trx triage 42 --status false-positive`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid asset id: %s", args[0])
		}
		if triageStatus == "" && triageNotes == "" {
			return fmt.Errorf("nothing to set (use --status and/or --notes)")
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ctrl.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load assets: %w", err)
		}

		// The repository write replaces both fields, so carry over
		// whichever one was not passed.
		status, notes := triageStatus, triageNotes
		for _, a := range s.ctrl.Assets() {
			if a.ID != id {
				continue
			}
			if !cmd.Flags().Changed("status") {
				status = a.TriageStatus
			}
			if !cmd.Flags().Changed("notes") {
				notes = a.Notes
			}
			break
		}

		if err := s.ctrl.UpdateTriage(cmd.Context(), id, status, notes); err != nil {
			return err
		}

		fmt.Printf("Updated asset %d\n", id)
		return nil
	},
}

func init() {
	triageCmd.Flags().StringVar(&triageStatus, "status", "", "triage status (e.g. pending, reviewed, false-positive)")
	triageCmd.Flags().StringVar(&triageNotes, "notes", "", "free-form triage notes")
	rootCmd.AddCommand(triageCmd)
}
