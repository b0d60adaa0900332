package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trx/internal/config"
	"trx/internal/logging"
	"trx/internal/store"
	"trx/internal/triage"
)

var (
	cfgFile string
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "trx",
	Short: "Security asset triage workbench",
	Long: `trx collects discovered HTTP endpoints into a local asset
database, scores them with a risk heuristic, and provides a fast TUI
for filtering, selecting and triaging them across a folder hierarchy
and a session workbench.

Running 'trx' without arguments launches the TUI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tuiCmd.RunE(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/trx/config.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
}

// session bundles the resources a command needs: config, log, store and
// a controller on top. Close releases them in reverse order.
type session struct {
	cfg   *config.Config
	log   *logging.FileLogger
	store *store.Store
	ctrl  *triage.Controller
}

func openSession() (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.NewFileLogger(cfg.LogPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &session{
		cfg:   cfg,
		log:   log,
		store: st,
		ctrl:  triage.New(st, log),
	}, nil
}

func (s *session) Close() {
	s.store.Close()
	s.log.Close()
}
