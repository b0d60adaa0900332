package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trx/internal/tui"
)

var purgeYes bool

var purgeCmd = &cobra.Command{
	Use:   "purge <asset-id...>",
	Short: "Permanently delete assets",
	Long: `Deletes assets from the database. This cannot be undone; a
confirmation prompt is shown unless --yes is passed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		if !purgeYes {
			result, err := tui.RunConfirm(fmt.Sprintf("Permanently delete %d asset(s)?", len(ids)))
			if err != nil {
				return err
			}
			if result.Aborted || !result.Confirmed {
				fmt.Println("Purge cancelled.")
				return nil
			}
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ctrl.Purge(cmd.Context(), ids); err != nil {
			return err
		}

		fmt.Printf("Purged %d asset(s)\n", len(ids))
		return nil
	},
}

// parseIDs parses positional arguments as asset ids.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid asset id: %s", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func init() {
	purgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(purgeCmd)
}
