package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"trx/internal/asset"
	"trx/internal/filter"
)

var (
	lsMethod    string
	lsStatus    string
	lsMinRisk   int
	lsSmart     string
	lsHost      string
	lsFolder    int64
	lsWorkbench bool
	lsSort      string
	lsDesc      bool
)

var lsCmd = &cobra.Command{
	Use:   "ls [query]",
	Short: "List assets",
	Long: `Lists assets with optional filtering by method, status bucket,
minimum risk score, smart tag (Critical, PII, Secrets, Shadow), host or
host/path scope, and folder.

An optional positional query fuzzy-matches against asset URLs:
  trx ls admin        # matches https://a.com/admin/login
  trx ls --smart PII  # assets with a PII finding`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.ctrl.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load assets: %w", err)
		}

		criteria := filter.DefaultCriteria()
		if lsMethod != "" {
			criteria.Method = lsMethod
		}
		if lsStatus != "" {
			criteria.StatusBucket = lsStatus
		}
		if lsSmart != "" {
			criteria.Smart = lsSmart
		}
		criteria.MinRisk = lsMinRisk
		criteria.TreePath = lsHost
		criteria.FolderID = lsFolder
		s.ctrl.SetCriteria(criteria)

		if lsSort != "" {
			spec := filter.SortSpec{Key: lsSort, Direction: filter.Ascending}
			if lsDesc {
				spec.Direction = filter.Descending
			}
			s.ctrl.SetSort(spec)
		}

		assets := s.ctrl.FilteredAssets()
		if lsWorkbench {
			wb := s.ctrl.WorkbenchIDs()
			kept := assets[:0]
			for _, a := range assets {
				if wb[a.ID] {
					kept = append(kept, a)
				}
			}
			assets = kept
		}

		if len(args) > 0 {
			assets = fuzzyFilterAssets(assets, args[0])
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(assets)
		}

		if len(assets) == 0 {
			fmt.Println("No assets found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMETHOD\tSTATUS\tRISK\tSOURCE\tFOLDER\tFINDINGS\tURL")
		for _, a := range assets {
			status := "-"
			if a.StatusCode > 0 {
				status = fmt.Sprintf("%d", a.StatusCode)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%d\t%d\t%s\n",
				a.ID, a.Method, status, a.RiskScore, a.Source, a.FolderID, len(a.Findings), a.URL)
		}
		w.Flush()

		return nil
	},
}

// fuzzyFilterAssets keeps assets whose URL fuzzy-matches the query, in
// match-quality order.
func fuzzyFilterAssets(assets []asset.Asset, query string) []asset.Asset {
	urls := make([]string, len(assets))
	for i, a := range assets {
		urls[i] = a.URL
	}

	matches := fuzzy.Find(query, urls)
	result := make([]asset.Asset, 0, len(matches))
	for _, m := range matches {
		result = append(result, assets[m.Index])
	}
	return result
}

func init() {
	lsCmd.Flags().StringVar(&lsMethod, "method", "", "filter by HTTP method")
	lsCmd.Flags().StringVar(&lsStatus, "status", "", "filter by status bucket (2xx, 3xx, 4xx, 5xx, 0)")
	lsCmd.Flags().IntVar(&lsMinRisk, "min-risk", 0, "minimum risk score")
	lsCmd.Flags().StringVar(&lsSmart, "smart", "", "smart tag filter (Critical, PII, Secrets, Shadow)")
	lsCmd.Flags().StringVar(&lsHost, "host", "", "host or host/path scope")
	lsCmd.Flags().Int64Var(&lsFolder, "folder", 0, "filter by folder id")
	lsCmd.Flags().BoolVar(&lsWorkbench, "workbench", false, "only show workbench assets")
	lsCmd.Flags().StringVar(&lsSort, "sort", "", "sort by column (risk_score, url, method, status_code, created_at)")
	lsCmd.Flags().BoolVar(&lsDesc, "desc", false, "sort descending")
	rootCmd.AddCommand(lsCmd)
}
