package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/hackhunt/internal/config"
	"github.com/pfrederiksen/hackhunt/internal/logger"
	"github.com/pfrederiksen/hackhunt/internal/pipeline"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// ingestFunc runs one ingestion with the resolved configuration.
type ingestFunc func(ctx context.Context, cfg *config.Config) (*pipeline.Summary, error)

type app struct {
	stdout io.Writer
	stderr io.Writer
	ingest ingestFunc

	configFile string
	format     string
	verbose    bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newApp(os.Stdout, os.Stderr, runPipeline).rootCmd()
}

func newApp(stdout, stderr io.Writer, ingest ingestFunc) *app {
	return &app{stdout: stdout, stderr: stderr, ingest: ingest}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hackhunt",
		Short: "Ingest hackathon listings into one canonical catalog",
		Long: `hackhunt collects open hackathons from Devpost, Devfolio, HackerEarth,
Unstop and MLH, normalizes them into one schema, and reconciles the batch with
the stored catalog. Running hackhunt without a subcommand is the same as
running "hackhunt ingest".`,
		RunE:          a.runIngest,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML config file (default ./hackhunt.yaml when present)")
	flags.StringVar(&a.format, "format", string(FormatJSON), "Summary format: json or text")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable debug logging")
	config.RegisterFlags(flags)

	cmd.AddCommand(a.ingestCmd(), a.versionCmd())
	return cmd
}

func (a *app) ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion over the selected sources",
		Args:  cobra.NoArgs,
		RunE:  a.runIngest,
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "hackhunt %s\n", Version)
		},
	}
}

// runIngest is the main command logic
func (a *app) runIngest(cmd *cobra.Command, args []string) error {
	// Validate format
	format := OutputFormat(strings.ToLower(a.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", a.format)
	}

	cfg, err := config.Load(a.configFile, cmd.Flags(), time.Now())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := a.setupLogging(cfg.LogLevel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := a.ingest(ctx, cfg)
	if err != nil {
		return err
	}

	if err := WriteSummary(a.stdout, summary, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func (a *app) setupLogging(levelName string) error {
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return err
	}
	if a.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, a.stderr))
	return nil
}

// runPipeline wires the production collaborators and runs the pipeline.
func runPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Summary, error) {
	opts, closeStore, err := pipeline.FromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	logger.Debug("Resolved configuration", logger.Fields{
		"sources":           cfg.Sources,
		"max_pages":         cfg.MaxPages,
		"mlh_season_year":   cfg.MLHSeasonYear,
		"store":             cfg.StoreEnabled(),
		"json_output":       opts.JSONOutput,
		"ics_output":        opts.ICSOutput,
		"geocoding":         cfg.GeocodingEnabled(),
		"offline_geocoding": cfg.OfflineGeocoding,
	})

	return pipeline.Run(ctx, opts)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
