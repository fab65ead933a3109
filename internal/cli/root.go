// Package cli provides the command-line interface for poppit.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/poppitai/poppit/internal/chat"
	"github.com/poppitai/poppit/internal/client"
	"github.com/poppitai/poppit/internal/config"
	"github.com/poppitai/poppit/internal/corpus"
	"github.com/poppitai/poppit/internal/match"
	"github.com/poppitai/poppit/internal/metrics"
	"github.com/poppitai/poppit/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	localFlag bool

	// Wired in PersistentPreRunE, shared by all commands
	cfg      config.Config
	logger   *slog.Logger
	logClose func() error
	sessions *store.Store
	ctl      *chat.Controller
	stats    *metrics.Collector

	theme = defaultTheme
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "poppit",
	Short: "Offline-first conversational AI client",
	Long: `Poppit is a conversational AI client. It answers from a local knowledge
corpus when offline, or from a model server when one is running, and keeps
every conversation in encrypted local sessions.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Nothing to wire for version and help
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if localFlag {
			cfg.UseLocalData = true
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, logClose = config.SetupLogger(cfg.LogFile, cfg.LogLevel)

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		kv, err := store.OpenSQLiteKV(filepath.Join(cfg.DataDir, "sessions.db"))
		if err != nil {
			return fmt.Errorf("open session database: %w", err)
		}
		sessions = store.New(kv, cfg.StorageSecret, logger)

		// In local mode a missing corpus degrades the client instead of
		// failing it; the controller still manages sessions.
		var engine *match.Engine
		if cfg.UseLocalData {
			entries, err := corpus.Load(cfg.CorpusPath)
			if err != nil {
				logger.Warn("knowledge corpus unavailable", "path", cfg.CorpusPath, "error", err)
			}
			engine = match.NewEngine(entries)
		} else {
			engine = match.NewEngine(nil)
		}

		var remote chat.RemoteClient
		var feedback chat.FeedbackSink
		if cfg.UseLocalData {
			feedback = corpus.NewFeedbackFile(cfg.LikesPath)
		} else {
			c := client.New(cfg.ServerURL)
			remote = c
			feedback = c
		}

		// No reveal animation when output is piped.
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			cfg.TypingDelay = 0
		}

		stats = metrics.NewCollector()
		ctl = chat.New(cfg, sessions, engine, remote, feedback, stats, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stats != nil && verbose {
			logger.Info("runtime stats", "snapshot", stats.Snapshot())
		}
		if sessions != nil {
			if err := sessions.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close session database: %v\n", err)
			}
		}
		if logClose != nil {
			logClose()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&localFlag, "local", false, "answer from the local corpus instead of the model server")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sessionsCmd)
}
