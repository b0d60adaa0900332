package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"trx/internal/asset"
)

var showCmd = &cobra.Command{
	Use:   "show <asset-id>",
	Short: "Show asset details",
	Long:  `Prints one asset with its findings, risk score and triage state.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid asset id: %s", args[0])
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ctrl.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load assets: %w", err)
		}

		var found *asset.Asset
		for _, a := range s.ctrl.Assets() {
			if a.ID == id {
				found = &a
				break
			}
		}
		if found == nil {
			return fmt.Errorf("asset %d not found", id)
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(found)
		}

		fmt.Printf("ID:       %d\n", found.ID)
		fmt.Printf("URL:      %s\n", found.URL)
		fmt.Printf("Method:   %s\n", found.Method)
		if found.StatusCode > 0 {
			fmt.Printf("Status:   %d\n", found.StatusCode)
		}
		fmt.Printf("Risk:     %d\n", found.RiskScore)
		fmt.Printf("Source:   %s\n", found.Source)
		fmt.Printf("Folder:   %d\n", found.FolderID)
		if found.IsWorkbench {
			fmt.Println("Workbench: yes")
		}
		if found.TriageStatus != "" {
			fmt.Printf("Triage:   %s\n", found.TriageStatus)
		}
		if found.Notes != "" {
			fmt.Printf("Notes:    %s\n", found.Notes)
		}
		fmt.Printf("Created:  %s\n", found.CreatedAt.Format("2006-01-02 15:04:05"))

		if len(found.Findings) > 0 {
			fmt.Printf("\nFindings (%d):\n", len(found.Findings))
			for _, f := range found.Findings {
				fp := ""
				if f.IsFP {
					fp = " [FP]"
				}
				fmt.Printf("  [%s]%s %s", f.Severity, fp, f.Short)
				if f.Category != "" {
					fmt.Printf(" (%s)", f.Category)
				}
				fmt.Println()
				if f.Description != "" {
					fmt.Printf("      %s\n", f.Description)
				}
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
