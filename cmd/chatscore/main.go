package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatscore/internal/config"
	"github.com/vovakirdan/chatscore/internal/extract"
	"github.com/vovakirdan/chatscore/internal/history"
	"github.com/vovakirdan/chatscore/internal/log"
	"github.com/vovakirdan/chatscore/internal/merge"
	"github.com/vovakirdan/chatscore/internal/score"
	"github.com/vovakirdan/chatscore/internal/score/copilot"
	"github.com/vovakirdan/chatscore/internal/score/openrouter"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type appFlags struct {
	configPath  string
	logLevel    string
	historyPath string
}

func newRootCmd() *cobra.Command {
	flags := &appFlags{}

	root := &cobra.Command{
		Use:           "chatscore",
		Short:         "Extract Slack chat exports and annotate them with LLM humor scores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.historyPath, "history", "", "sqlite file for run history (off by default)")

	root.AddCommand(newExtractCmd(flags))
	root.AddCommand(newAddHumorCmd(flags))
	root.AddCommand(newRunsCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

// setup loads config and builds the logger, applying flag overrides.
func setup(flags *appFlags) (config.Config, *zerolog.Logger, error) {
	bootstrap := log.New("info")
	cfg, _, err := config.Load(bootstrap, flags.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.historyPath != "" {
		cfg.HistoryPath = flags.historyPath
	}
	return cfg, log.New(cfg.LogLevel), nil
}

// buildScorer picks the completion provider from config. A provider that
// cannot be constructed or probed degrades to the fallback score rather than
// failing the run.
func buildScorer(ctx context.Context, cfg config.Config, logger *zerolog.Logger) *score.Scorer {
	var provider score.Provider

	switch cfg.Provider {
	case config.ProviderOpenRouter:
		client, err := openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("openrouter unavailable, all scores will use the fallback")
			provider = score.Unavailable(err)
		} else {
			provider = client
		}
	default:
		client := copilot.New(cfg.LLMCommand, logger)
		if !client.Available(ctx) {
			logger.Warn().Str("command", cfg.LLMCommand).
				Msg("llm cli not found, all scores will use the fallback")
		}
		provider = client
	}

	return score.New(provider, cfg.ScoreTimeout, logger)
}

func openHistory(cfg config.Config, logger *zerolog.Logger) (*history.Store, error) {
	if cfg.HistoryPath == "" {
		return nil, nil
	}
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	logger.Info().Str("path", cfg.HistoryPath).Msg("run history enabled")
	return store, nil
}

func newExtractCmd(flags *appFlags) *cobra.Command {
	var humorScores bool

	cmd := &cobra.Command{
		Use:   "extract <src-folder> <dst-path>",
		Short: "Extract chat data from raw Slack JSON export files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}

			srcDir, dstPath := args[0], args[1]
			info, err := os.Stat(srcDir)
			if err != nil {
				return fmt.Errorf("source folder %q: %w", srcDir, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%q is not a directory", srcDir)
			}

			var scorer *score.Scorer
			if humorScores {
				scorer = buildScorer(cmd.Context(), cfg, logger)
			}

			n, err := extract.New(scorer, logger).Run(cmd.Context(), srcDir, dstPath)
			if err != nil {
				return err
			}
			fmt.Printf("Extracted %d messages to %s\n", n, dstPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&humorScores, "humor-scores", false,
		"score messages with the LLM during extraction")
	return cmd
}

func newAddHumorCmd(flags *appFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add-humor <dataset.json>",
		Short: "Add humor scores to an existing processed dataset, in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}

			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("dataset %q: %w", path, err)
			}
			if info.IsDir() {
				return fmt.Errorf("%q is a directory, expected a JSON file", path)
			}

			store, err := openHistory(cfg, logger)
			if err != nil {
				return err
			}
			var audit merge.Auditor
			if store != nil {
				defer store.Close()
				audit = store
			}

			scorer := buildScorer(cmd.Context(), cfg, logger)
			res, err := merge.New(scorer, audit, logger).Apply(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %d of %d records in %s\n", res.Updated, res.Total, path)
			return nil
		},
	}
}

func newRunsCmd(flags *appFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent scoring runs from the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}
			if cfg.HistoryPath == "" {
				return fmt.Errorf("no history database configured, pass --history")
			}

			store, err := openHistory(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}
			for _, r := range runs {
				finished := "running"
				if r.FinishedAt.Valid {
					finished = r.FinishedAt.Time.Local().Format("2006-01-02 15:04:05")
				}
				fmt.Printf("%s  %s  updated %d/%d  finished %s\n",
					r.ID, r.DatasetPath, r.Updated, r.Total, finished)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the chatscore version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("chatscore", version)
		},
	}
}
