package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rescanAll bool

var rescanCmd = &cobra.Command{
	Use:   "rescan [asset-id...]",
	Short: "Re-derive risk scores for assets",
	Long: `Recomputes the risk heuristic for the given assets from their
current URL and method. With --all, every asset is rescanned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ctrl.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load assets: %w", err)
		}

		var ids []int64
		if rescanAll {
			for _, a := range s.ctrl.Assets() {
				ids = append(ids, a.ID)
			}
		} else {
			ids, err = parseIDs(args)
			if err != nil {
				return err
			}
		}
		if len(ids) == 0 {
			return fmt.Errorf("no assets to rescan (pass ids or --all)")
		}

		if err := s.ctrl.Rescan(cmd.Context(), ids); err != nil {
			return err
		}

		fmt.Printf("Rescanned %d asset(s)\n", len(ids))
		return nil
	},
}

func init() {
	rescanCmd.Flags().BoolVar(&rescanAll, "all", false, "rescan every asset")
	rootCmd.AddCommand(rescanCmd)
}
