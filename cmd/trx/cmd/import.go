package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trx/internal/importer"
	"trx/internal/repo"
	"trx/internal/urlutil"
)

var (
	importFile      string
	importScan      bool
	importDest      string
	importMethod    string
	importRecursive bool
	importBatch     bool
	importBatchSize int
	importRateMs    int
	importNoSkipDup bool
)

var importCmd = &cobra.Command{
	Use:   "import [url...]",
	Short: "Import endpoints into the asset database",
	Long: `Imports one or more endpoint URLs. URLs can be passed as
arguments, read line by line from a file (--file, "-" for stdin), or
harvested from arbitrary text such as HTTP responses or JS bundles
(--scan, applied to the --file content).

URLs are normalized before insert; an item whose url+method already
exists is skipped unless duplicates are allowed. Importing to the
workbench always reaches existing assets so they join the session set.

Batch mode (--batch) slices the run into rate-limited batches; a failed
batch is reported and skipped without aborting the rest of the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := args

		if importFile != "" {
			content, err := readImportFile(importFile)
			if err != nil {
				return err
			}
			if importScan {
				urls = append(urls, urlutil.HarvestURLs(content)...)
			} else {
				for _, line := range strings.Split(content, "\n") {
					line = strings.TrimSpace(line)
					if line == "" || strings.HasPrefix(line, "#") {
						continue
					}
					urls = append(urls, line)
				}
			}
		} else if importScan {
			return fmt.Errorf("--scan requires --file")
		}

		if len(urls) == 0 {
			return fmt.Errorf("no URLs to import")
		}

		dest := importer.DestAssetManager
		switch importDest {
		case "assets", "":
		case "workbench":
			dest = importer.DestWorkbench
		default:
			return fmt.Errorf("invalid destination %q (want assets or workbench)", importDest)
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		// When the config carries a scope allowlist, out-of-scope hosts
		// are rejected up front rather than imported.
		if len(s.cfg.AuthorizedDomains) > 0 {
			var inScope []string
			for _, u := range urls {
				if hostAuthorized(u, s.cfg.AuthorizedDomains) {
					inScope = append(inScope, u)
				} else {
					fmt.Fprintf(os.Stderr, "Skipping out-of-scope URL: %s\n", u)
				}
			}
			urls = inScope
			if len(urls) == 0 {
				return fmt.Errorf("no in-scope URLs to import")
			}
		}

		items := make([]repo.ImportItem, len(urls))
		for i, u := range urls {
			items[i] = repo.ImportItem{
				URL:       u,
				Method:    importMethod,
				Recursive: importRecursive,
			}
		}

		opts := importer.Options{
			BatchMode:      importBatch,
			BatchSize:      importBatchSize,
			SkipDuplicates: s.cfg.SkipDuplicates && !importNoSkipDup,
		}
		if opts.BatchSize == 0 {
			opts.BatchSize = s.cfg.DefaultBatchSize
		}
		if importRateMs > 0 {
			opts.RateLimit = time.Duration(importRateMs) * time.Millisecond
		} else {
			opts.RateLimit = s.cfg.RateLimit()
		}

		result, err := s.ctrl.RunImport(cmd.Context(), items, dest, opts)
		if err != nil {
			return err
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Printf("Imported %d asset(s) to %s", len(result.NewIDs), importDest)
		if result.ErrorCount > 0 {
			fmt.Printf(", %d error(s)", result.ErrorCount)
		}
		skipped := len(items) - len(result.NewIDs) - result.ErrorCount
		if skipped > 0 {
			fmt.Printf(", %d duplicate(s) skipped", skipped)
		}
		fmt.Printf(" (run %s)\n", result.ImportID)
		return nil
	},
}

// hostAuthorized reports whether the URL's host is one of the allowed
// domains or a subdomain of one.
func hostAuthorized(rawURL string, allowed []string) bool {
	host := strings.ToLower(urlutil.Host(urlutil.EnsureScheme(rawURL)))
	for _, domain := range allowed {
		domain = strings.ToLower(domain)
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func readImportFile(path string) (string, error) {
	if path == "-" {
		var sb strings.Builder
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			sb.WriteString(scanner.Text())
			sb.WriteByte('\n')
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return sb.String(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "read URLs from file (\"-\" for stdin)")
	importCmd.Flags().BoolVar(&importScan, "scan", false, "harvest URLs from the file content instead of reading it line by line")
	importCmd.Flags().StringVar(&importDest, "dest", "assets", "destination: assets or workbench")
	importCmd.Flags().StringVarP(&importMethod, "method", "X", "GET", "HTTP method for the imported endpoints")
	importCmd.Flags().BoolVar(&importRecursive, "recursive", false, "mark items as recursively discovered")
	importCmd.Flags().BoolVar(&importBatch, "batch", false, "import in rate-limited batches")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "items per batch (default from config)")
	importCmd.Flags().IntVar(&importRateMs, "rate-limit", 0, "pause between batches in ms (default from config)")
	importCmd.Flags().BoolVar(&importNoSkipDup, "no-skip-duplicates", false, "re-touch assets whose url+method already exists")
	rootCmd.AddCommand(importCmd)
}
