package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"verynews/api"
	"verynews/config"
	"verynews/crawler"
	"verynews/pkg/reportstore"
	"verynews/search"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	debug   bool
	newsIn  string
	outPath string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "verynews",
	Short:        "Fact-check news against web sources",
	SilenceUsage: true,
}

var judgeCmd = &cobra.Command{
	Use:   "judge [news text]",
	Short: "Judge a news item and write a Markdown report",
	Long: `Judge reads the news from the arguments, from --file, or from stdin,
prints the verdict JSON and the report, and writes the report to --out.`,
	RunE: runJudge,
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Run search queries and print the source digest",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the judge over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "development logging")
	judgeCmd.Flags().StringVarP(&newsIn, "file", "f", "", "read news from file")
	judgeCmd.Flags().StringVarP(&outPath, "out", "o", "verynews_report.md", "report output path")
	rootCmd.AddCommand(judgeCmd, searchCmd, serveCmd)
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func openArchive(cfg *config.Config) (*reportstore.Store, error) {
	if cfg.ReportDBPath == "" {
		return nil, nil
	}
	return reportstore.Open(cfg.ReportDBPath)
}

func readNews(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case newsIn != "":
		b, err := os.ReadFile(newsIn)
		if err != nil {
			return "", fmt.Errorf("failed to read news file: %w", err)
		}
		return string(b), nil
	default:
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}
}

func runJudge(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	news, err := readNews(cmd, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(news) == "" {
		return errors.New("no news content given")
	}

	ctx := crawler.WithRunID(cmd.Context(), uuid.NewString())
	judge, err := newJudge(ctx, cfg, logger)
	if err != nil {
		return err
	}

	res, err := judge.Run(ctx, news)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	verdict, _ := json.MarshalIndent(res.Judgement, "", "  ")
	fmt.Fprintln(out, "--- Authenticity Judgement JSON ---")
	fmt.Fprintln(out, string(verdict))
	fmt.Fprintln(out, "--- Markdown Research Report ---")
	fmt.Fprintln(out, res.Report)

	if err := os.WriteFile(outPath, []byte(res.Report), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Info("report written", zap.String("path", outPath))

	archive, err := openArchive(cfg)
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close()
		if err := archive.Save(res.RunID, res.CreatedAt, res); err != nil {
			return fmt.Errorf("failed to archive report: %w", err)
		}
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	orchestrator, err := newOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	ctx := crawler.WithRunID(cmd.Context(), uuid.NewString())
	batch := orchestrator.Search(ctx, args, search.Options{
		MaxResults:        cfg.MaxResults,
		IncludeRawContent: cfg.IncludeRawContent,
		TrustedSites:      cfg.TrustedSites,
	})
	fmt.Fprintln(cmd.OutOrStdout(), search.FormatSources(batch, cfg.MaxTokensPerSource, cfg.IncludeRawContent, logger))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// =========
	// Profiling
	// =========
	go func() {
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logger.Warn("pprof server stopped", zap.Error(err))
		}
	}()

	judge, err := newJudge(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	// =========
	// Report archive
	// =========
	var archive api.Archive
	store, err := openArchive(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		archive = store
	}

	server := api.NewServer(judge, archive, logger, ":"+strconv.Itoa(cfg.AppPort))
	return server.Start(cmd.Context())
}
