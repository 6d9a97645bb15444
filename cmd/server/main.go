package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payrollpie/internal/api"
	"payrollpie/internal/chart"
	"payrollpie/internal/config"
	"payrollpie/internal/engine"
	"payrollpie/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// Global flags
	configPath string
	dataSource string
	listenAddr string
	verbose    bool

	// render flags
	renderYear   int
	renderFormat string
	renderOut    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "payrollpie",
	Short: "Average daily salary by borough, as an interactive pie chart",
	Long: `payrollpie loads a CSV of public payroll records once, averages the daily
salary per work-location borough for a fiscal year and serves a pie chart
with a year slider.

Run without a subcommand to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataSource != "" {
			cfg.Data.Source = dataSource
		}
		if listenAddr != "" {
			cfg.Server.Addr = listenAddr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Log.Level, cfg.Log.Development, verbose)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chart server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a static pie chart for one year",
	Long: `Loads the payroll data and writes the pie chart for --year as SVG or PNG.

Example:
  payrollpie render --year 2016 --format png --out pie-2016.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRender(cmd.Context(), cmd.OutOrStdout())
	},
}

func chartOptions(c *config.Config) api.Options {
	return api.Options{
		Chart: chart.Options{
			Layout:       chart.Layout{Width: c.Chart.Width, Height: c.Chart.Height, Margin: c.Chart.Margin},
			Frames:       c.Chart.Frames,
			TransitionMs: int(c.GetTransition() / time.Millisecond),
			MinYear:      c.Slider.Min,
			MaxYear:      c.Slider.Max,
			Step:         c.Slider.Step,
		},
		LabelFontSize:  c.Chart.LabelFontSize,
		TooltipFadeIn:  int(c.GetTooltipFadeIn() / time.Millisecond),
		TooltipFadeOut: int(c.GetTooltipFadeOut() / time.Millisecond),
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The API is live immediately and answers 503 until the load completes.
	h := api.NewHandler(chartOptions(cfg), logger)
	e := api.NewServer(h, logger)
	e.Server.ReadTimeout = cfg.GetReadTimeout()
	e.Server.WriteTimeout = cfg.GetWriteTimeout()

	g, gctx := errgroup.WithContext(ctx)
	var cached *engine.CachedStore

	g.Go(func() error {
		logger.Info("loading payroll data", zap.String("source", cfg.Data.Source))
		t0 := time.Now()
		fctx, cancel := context.WithTimeout(gctx, cfg.GetFetchTimeout())
		defer cancel()

		store, stats, err := engine.Load(fctx, cfg.Data.Source, logger)
		if err != nil {
			// No retry: the page stays unrendered and the API reports the failure.
			logger.Error("error loading the CSV file", zap.Error(err))
			h.SetError(err)
			return nil
		}
		cached, err = engine.NewCachedStore(store, engine.CacheConfig{
			NumCounters: cfg.Cache.NumCounters,
			MaxCost:     cfg.Cache.MaxCost,
		})
		if err != nil {
			h.SetError(err)
			return err
		}
		h.SetData(cached, stats)
		logger.Info("payroll data ready", zap.Duration("elapsed", time.Since(t0)))
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server running", zap.String("addr", cfg.Server.Addr))
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		if err := e.Shutdown(sctx); err != nil {
			logger.Error("forced shutdown", zap.Error(err))
			return err
		}
		logger.Info("server exited gracefully")
		return nil
	})

	err := g.Wait()
	if cached != nil {
		cached.Close()
	}
	return err
}

func runRender(ctx context.Context, stdout io.Writer) error {
	format, err := chart.ParseFormat(renderFormat)
	if err != nil {
		return err
	}
	fctx, cancel := context.WithTimeout(ctx, cfg.GetFetchTimeout())
	defer cancel()
	store, _, err := engine.Load(fctx, cfg.Data.Source, logger)
	if err != nil {
		return fmt.Errorf("error loading the CSV file: %w", err)
	}

	years := store.DistinctYears()
	year := renderYear
	if year == 0 && len(years) > 0 {
		year = years[0]
	}

	w := stdout
	if renderOut != "" && renderOut != "-" {
		f, err := os.Create(renderOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", renderOut, err)
		}
		defer f.Close()
		w = f
	}

	opts := chartOptions(cfg)
	if err := chart.RenderImage(w, store.Aggregate(year), chart.NewYearScale(years), opts.Chart.Layout, format); err != nil {
		return err
	}
	logger.Info("chart rendered", zap.Int("year", year), zap.String("format", string(format)), zap.String("out", renderOut))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "payrollpie.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataSource, "data", "", "Payroll CSV path or URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	renderCmd.Flags().IntVar(&renderYear, "year", 0, "Fiscal year to render (default: earliest in the data)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "svg", "Output format: svg or png")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "-", "Output file, - for stdout")

	rootCmd.AddCommand(serveCmd, renderCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
