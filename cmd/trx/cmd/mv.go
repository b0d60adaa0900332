package cmd

import (
	"fmt"
	"os"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"trx/internal/asset"
)

var mvCmd = &cobra.Command{
	Use:   "mv <folder> <asset-id...>",
	Short: "Move assets into a folder",
	Long: `Moves assets into a folder named by the first argument.

The folder name supports fuzzy matching:
  trx mv stag 12 13    # matches the "staging" folder`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[1:])
		if err != nil {
			return err
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ctrl.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load folders: %w", err)
		}

		target, err := resolveFolder(s.ctrl.Folders(), args[0])
		if err != nil {
			return err
		}

		if err := s.ctrl.MoveToFolder(cmd.Context(), ids, target.ID); err != nil {
			return err
		}

		fmt.Printf("Moved %d asset(s) to %s\n", len(ids), target.Name)
		return nil
	},
}

// resolveFolder finds a folder by exact name, falling back to fuzzy
// matching.
func resolveFolder(folders []asset.Folder, query string) (asset.Folder, error) {
	for _, f := range folders {
		if f.Name == query {
			return f, nil
		}
	}

	names := make([]string, len(folders))
	for i, f := range folders {
		names[i] = f.Name
	}

	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return asset.Folder{}, fmt.Errorf("no folder found matching: %s", query)
	}

	best := matches[0]
	if len(matches) > 1 && matches[0].Score == matches[1].Score {
		fmt.Fprintf(os.Stderr, "Ambiguous match, using: %s\n", best.Str)
	}
	return folders[best.Index], nil
}

func init() {
	rootCmd.AddCommand(mvCmd)
}
