package cmd

import (
	"github.com/spf13/cobra"

	"trx/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive triage workbench",
	Long:  `Opens the terminal user interface for browsing, filtering and triaging assets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		return tui.RunWorkbench(s.ctrl)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
