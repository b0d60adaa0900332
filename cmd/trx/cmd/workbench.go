package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trx/internal/asset"
)

var workbenchCmd = &cobra.Command{
	Use:   "workbench",
	Short: "Manage the session workbench set",
	Long: `The workbench is the working set of assets under active
investigation. Membership is persisted, so the set survives restarts.`,
}

var workbenchAddCmd = &cobra.Command{
	Use:   "add <asset-id...>",
	Short: "Promote assets to the workbench",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setWorkbenchMembership(cmd, args, asset.SourceWorkbench, "Promoted")
	},
}

var workbenchRmCmd = &cobra.Command{
	Use:   "rm <asset-id...>",
	Short: "Demote assets from the workbench",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setWorkbenchMembership(cmd, args, asset.SourceImport, "Demoted")
	},
}

func setWorkbenchMembership(cmd *cobra.Command, args []string, source asset.Source, verb string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ctrl.Promote(cmd.Context(), ids, source); err != nil {
		return err
	}

	fmt.Printf("%s %d asset(s)\n", verb, len(ids))
	return nil
}

func init() {
	workbenchCmd.AddCommand(workbenchAddCmd)
	workbenchCmd.AddCommand(workbenchRmCmd)
	rootCmd.AddCommand(workbenchCmd)
}
