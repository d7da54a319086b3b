// biasfeed — stock news bias & sentiment aggregation.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/biasfeed/api"
	"github.com/seenimoa/biasfeed/internal/analysis"
	"github.com/seenimoa/biasfeed/internal/bias"
	"github.com/seenimoa/biasfeed/internal/config"
	"github.com/seenimoa/biasfeed/internal/ingest"
	"github.com/seenimoa/biasfeed/internal/provider"
	"github.com/seenimoa/biasfeed/internal/scheduler"
	"github.com/seenimoa/biasfeed/internal/sentiment"
	"github.com/seenimoa/biasfeed/internal/store"
	"github.com/seenimoa/biasfeed/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

var logger *slog.Logger

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "biasfeed",
	Short: "biasfeed — stock news bias & sentiment aggregation",
	Long: `biasfeed aggregates stock news from multiple providers, labels every
article with its source's political bias rating and a financial
sentiment classification, and reports bias/sentiment distributions per
ticker and per portfolio.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			cfg.Logging.Level = override
		}
		logger = newLogger(cfg.Logging)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(portfolioCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(statusCmd)
}

// newLogger builds the process logger from config.
func newLogger(lc config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(lc.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// app bundles everything a command needs after wiring.
type app struct {
	store    *store.Store
	registry *bias.Registry
	analysis *analysis.Service
	ingester *ingest.Orchestrator
}

// newApp opens the store and wires the pipeline from config.
func newApp(ctx context.Context) (*app, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	registry := bias.NewRegistry(st, logger)
	if err := registry.Refresh(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("load bias registry: %w", err)
	}
	logger.Debug("bias registry loaded", "sources", registry.Len())

	var classifier sentiment.Classifier
	if cfg.Sentiment.InferenceURL != "" || cfg.Sentiment.APIKey != "" {
		classifier = sentiment.NewFinBERT(cfg.Sentiment.Model, cfg.Sentiment.InferenceURL, cfg.Sentiment.APIKey)
	} else {
		classifier = sentiment.NewKeyword()
	}
	analyzer := sentiment.NewAnalyzer(classifier, logger)

	svc := analysis.NewService(st, analyzer, registry, registry, logger, cfg.Sentiment.BackfillLimit)

	adapters := []provider.Adapter{
		provider.NewPolygon(cfg.Providers.PolygonAPIKey, logger),
		provider.NewFinnhub(cfg.Providers.FinnhubAPIKey, logger),
		provider.NewFinancialDatasets(cfg.Providers.FinancialDatasetsAPIKey, logger),
	}
	if cfg.Providers.RSSEnabled {
		adapters = append(adapters, provider.NewRSS(logger))
	}

	normalizer := ingest.NewNormalizer(registry, logger)
	orch := ingest.NewOrchestrator(
		adapters, normalizer, registry, st, logger,
		cfg.News.LimitPerSource, cfg.News.MaxAgeDays,
		time.Duration(cfg.News.TickerDelaySeconds)*time.Second,
	)

	return &app{store: st, registry: registry, analysis: svc, ingester: orch}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("close database", "error", err)
	}
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("biasfeed %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API server + scheduler) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and the periodic fetch scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		// Seed the source registry on first boot so bias resolution
		// works out of the box.
		if added, err := a.store.SeedSources(ctx); err != nil {
			return fmt.Errorf("seed sources: %w", err)
		} else if added > 0 {
			logger.Info("seeded source registry", "added", added)
			if err := a.registry.Refresh(ctx); err != nil {
				return err
			}
		}

		noSchedule, _ := cmd.Flags().GetBool("no-schedule")
		if !noSchedule {
			sched := scheduler.New(a.ingester, a.analysis, cfg.News.Tickers, cfg.News.FetchIntervalMinutes, logger)
			if err := sched.Start(ctx); err != nil {
				return err
			}
			defer sched.Stop()
		}

		api.Version = version
		srv := api.NewServer(cfg, a.store, a.analysis, a.ingester, logger)
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		logger.Info("starting API server", "addr", addr)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().Bool("no-schedule", false, "serve the API without the periodic fetch scheduler")
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch [ticker...]",
	Short: "Fetch and store news for tickers (defaults to configured watchlist)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		tickers := cfg.News.Tickers
		if len(args) > 0 {
			tickers = args
		}

		total, err := a.ingester.RunForTickers(ctx, tickers)
		if err != nil {
			return err
		}
		fmt.Printf("Fetched news for %d ticker(s): %d new article(s).\n", len(tickers), total)
		return nil
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Show bias and sentiment analysis for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		days, _ := cmd.Flags().GetInt("days")
		result, err := a.analysis.AnalyzeTicker(ctx, args[0], days)
		if err != nil {
			return err
		}

		printTickerAnalysis(result)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Int("days", 7, "trailing window in days")
}

// --- Portfolio Command ---

var portfolioCmd = &cobra.Command{
	Use:   "portfolio [ticker...]",
	Short: "Show aggregate analysis for a set of tickers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		tickers := cfg.News.Tickers
		if len(args) > 0 {
			tickers = args
		}
		days, _ := cmd.Flags().GetInt("days")

		agg, err := a.analysis.Portfolio(ctx, tickers, days)
		if err != nil {
			return err
		}

		fmt.Printf("Portfolio analysis — %s (past %d days)\n", strings.Join(agg.Tickers, ", "), agg.Days)
		fmt.Printf("  Total articles: %d\n", agg.TotalArticles)
		fmt.Printf("  Bias:      left %.1f%% | lean_left %.1f%% | center %.1f%% | lean_right %.1f%% | right %.1f%% | unknown %.1f%%\n",
			agg.Bias.LeftPercentage, agg.Bias.LeanLeftPercentage, agg.Bias.CenterPercentage,
			agg.Bias.LeanRightPercentage, agg.Bias.RightPercentage, agg.Bias.UnknownPercentage)
		fmt.Printf("  Sentiment: bullish %.1f%% | bearish %.1f%% | neutral %.1f%% → %s\n",
			agg.Sentiment.BullishPercentage, agg.Sentiment.BearishPercentage,
			agg.Sentiment.NeutralPercentage, agg.Sentiment.OverallSentiment)
		if agg.HasBiasedCoverage {
			fmt.Printf("  One-sided coverage: %s\n", strings.Join(agg.BiasedTickers, ", "))
		}
		return nil
	},
}

func init() {
	portfolioCmd.Flags().Int("days", 7, "trailing window in days")
}

// --- Backfill Command ---

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Re-resolve bias and classify sentiment for pending articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		biasCount, err := a.analysis.BackfillBias(ctx)
		if err != nil {
			return err
		}
		sentimentCount, err := a.analysis.BackfillSentiment(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Backfill complete: %d bias label(s), %d sentiment label(s) updated.\n", biasCount, sentimentCount)
		return nil
	},
}

// --- Seed Command ---

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the default source registry (AllSides bias ratings)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		added, err := a.store.SeedSources(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d source(s).\n", added)
		return nil
	},
}

// --- Sources Command ---

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered news sources and their bias ratings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		sources, err := a.store.ListSources(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("%-30s %-25s %s\n", "NAME", "DOMAIN", "BIAS")
		for _, src := range sources {
			fmt.Printf("%-30s %-25s %s\n", src.Name, src.Domain, src.BiasRating)
		}
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  biasfeed — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:    %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Database:       %s\n", cfg.Database.Path)
		fmt.Printf("    Watchlist:      %s\n", strings.Join(cfg.News.Tickers, ", "))
		fmt.Printf("    Fetch interval: %dm\n", cfg.News.FetchIntervalMinutes)
		fmt.Printf("    Sentiment:      %s\n", cfg.Sentiment.Model)
		fmt.Printf("    API Server:     %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-30s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// printTickerAnalysis renders one ticker's analysis for the terminal.
func printTickerAnalysis(r *models.TickerAnalysis) {
	fmt.Printf("Analysis for %s (past %d days, %d articles)\n", r.Ticker, r.Days, r.Bias.TotalArticles)
	fmt.Println()
	fmt.Println("  Bias distribution:")
	fmt.Printf("    left       %3d  (%5.1f%%)\n", r.Bias.LeftCount, r.Bias.LeftPercentage)
	fmt.Printf("    lean_left  %3d  (%5.1f%%)\n", r.Bias.LeanLeftCount, r.Bias.LeanLeftPercentage)
	fmt.Printf("    center     %3d  (%5.1f%%)\n", r.Bias.CenterCount, r.Bias.CenterPercentage)
	fmt.Printf("    lean_right %3d  (%5.1f%%)\n", r.Bias.LeanRightCount, r.Bias.LeanRightPercentage)
	fmt.Printf("    right      %3d  (%5.1f%%)\n", r.Bias.RightCount, r.Bias.RightPercentage)
	fmt.Printf("    unknown    %3d  (%5.1f%%)\n", r.Bias.UnknownCount, r.Bias.UnknownPercentage)
	fmt.Println()
	fmt.Println("  Sentiment distribution:")
	fmt.Printf("    bullish    %3d  (%5.1f%%)\n", r.Sentiment.BullishCount, r.Sentiment.BullishPercentage)
	fmt.Printf("    bearish    %3d  (%5.1f%%)\n", r.Sentiment.BearishCount, r.Sentiment.BearishPercentage)
	fmt.Printf("    neutral    %3d  (%5.1f%%)\n", r.Sentiment.NeutralCount, r.Sentiment.NeutralPercentage)
	fmt.Println()
	if r.DiversityWarning != "" {
		fmt.Printf("  %s\n", r.DiversityWarning)
	}
	fmt.Printf("  %s\n", r.SentimentSummary)
}
