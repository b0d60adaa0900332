package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trx/internal/tui"
)

var (
	folderParent int64
	folderRmYes  bool
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage asset folders",
	Long: `Folders group assets in the asset manager. Folder 1 is the
reserved default; deleting a folder moves its assets back there.`,
}

var folderLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ctrl.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load folders: %w", err)
		}

		folders := s.ctrl.Folders()
		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(folders)
		}

		// Count assets per folder for the listing.
		counts := make(map[int64]int)
		for _, a := range s.ctrl.Assets() {
			counts[a.FolderID]++
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPARENT\tASSETS")
		for _, f := range folders {
			parent := "-"
			if f.ParentID != 0 {
				parent = fmt.Sprintf("%d", f.ParentID)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", f.ID, f.Name, parent, counts[f.ID])
		}
		w.Flush()

		return nil
	},
}

var folderAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.ctrl.AddFolder(cmd.Context(), args[0], folderParent)
		if err != nil {
			return err
		}

		fmt.Printf("Created folder %s (id %d)\n", args[0], id)
		return nil
	},
}

var folderRmCmd = &cobra.Command{
	Use:   "rm <folder-id>",
	Short: "Delete a folder",
	Long: `Deletes a folder. Its assets are moved to the default folder
first; the default folder itself cannot be deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid folder id: %s", args[0])
		}

		if !folderRmYes {
			result, err := tui.RunConfirm("Delete this folder? Assets move to the default folder.")
			if err != nil {
				return err
			}
			if result.Aborted || !result.Confirmed {
				fmt.Println("Delete cancelled.")
				return nil
			}
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ctrl.DeleteFolder(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Printf("Deleted folder %d\n", id)
		return nil
	},
}

func init() {
	folderAddCmd.Flags().Int64Var(&folderParent, "parent", 0, "parent folder id")
	folderRmCmd.Flags().BoolVarP(&folderRmYes, "yes", "y", false, "skip the confirmation prompt")
	folderCmd.AddCommand(folderLsCmd)
	folderCmd.AddCommand(folderAddCmd)
	folderCmd.AddCommand(folderRmCmd)
	rootCmd.AddCommand(folderCmd)
}
