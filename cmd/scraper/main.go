package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-scrape-amazon/config"
	"github.com/aluiziolira/go-scrape-amazon/models"
	"github.com/aluiziolira/go-scrape-amazon/scraper"
)

type globalFlags struct {
	configPath  string
	baseURL     string
	proxy       string
	maxPages    int
	timeout     time.Duration
	outputDir   string
	format      string
	metricsAddr string
	dedupe      bool
	randomUA    bool
	verbose     bool
}

var global globalFlags

var rootCmd = &cobra.Command{
	Use:           "scraper",
	Short:         "scraper collects Amazon search results and product reviews.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaults := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&global.configPath, "config", "", "YAML file with session settings and an optional request")
	flags.StringVar(&global.baseURL, "base-url", defaults.BaseURL, "Site root to scrape")
	flags.StringVar(&global.proxy, "proxy", "", "Proxy host[:port] or URL")
	flags.IntVar(&global.maxPages, "max-pages", defaults.MaxPages, "Stop after this many pages (0 = no limit)")
	flags.DurationVar(&global.timeout, "timeout", defaults.Timeout, "Per-request timeout")
	flags.StringVar(&global.outputDir, "output-dir", defaults.OutputDir, "Directory for saved results")
	flags.StringVar(&global.format, "format", defaults.OutputFormat, "Output format: csv, json, dual or sqlite")
	flags.StringVar(&global.metricsAddr, "metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")
	flags.BoolVar(&global.dedupe, "dedupe", false, "Drop records already seen on earlier pages")
	flags.BoolVar(&global.randomUA, "random-user-agent", false, "Rotate the User-Agent header per request")
	flags.BoolVarP(&global.verbose, "verbose", "v", false, "Enable verbose logging")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig layers defaults, the config file, the environment and any
// flags set on the command line, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, *models.ScrapeRequest, error) {
	cfg := config.DefaultConfig()

	var fileReq *models.ScrapeRequest
	if global.configPath != "" {
		req, err := cfg.LoadFile(global.configPath)
		if err != nil {
			return nil, nil, err
		}
		fileReq = req
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = global.baseURL
	}
	if flags.Changed("proxy") {
		cfg.Proxy = global.proxy
	}
	if flags.Changed("max-pages") {
		cfg.MaxPages = global.maxPages
	}
	if flags.Changed("timeout") {
		cfg.Timeout = global.timeout
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = global.outputDir
	}
	if flags.Changed("format") {
		cfg.OutputFormat = global.format
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = global.metricsAddr
	}
	if flags.Changed("dedupe") {
		cfg.DedupeAcrossPages = global.dedupe
	}
	if flags.Changed("random-user-agent") {
		cfg.RandomUserAgent = global.randomUA
	}
	if flags.Changed("verbose") {
		cfg.Verbose = global.verbose
	}
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, fileReq, nil
}

func execute(ctx context.Context, cfg *config.Config, req models.ScrapeRequest) error {
	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}
	if req.Interactive {
		s.SetProgress(newProgressBar(os.Stderr))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	slog.Info("starting scrape",
		slog.String("kind", string(req.Kind)),
		slog.String("base_url", cfg.BaseURL),
		slog.Int("max_pages", cfg.MaxPages),
	)

	start := time.Now()
	rs, err := s.Run(ctx, req)
	if rs == nil {
		return err
	}
	if req.Interactive {
		printRecords(os.Stdout, rs)
	}
	printSummary(os.Stdout, rs, time.Since(start))
	return err
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
