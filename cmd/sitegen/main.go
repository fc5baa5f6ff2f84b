package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/sitegen/internal/broadcast"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/pipeline"
	"git.home.luguber.info/inful/sitegen/internal/service"
	"git.home.luguber.info/inful/sitegen/internal/statestore"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"sitegen.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`
	Metrics string `help:"Serve Prometheus metrics on this address (e.g. :9090)"`

	Run struct {
		Company     string `arg:"" help:"Company name to generate the site for"`
		Project     string `short:"p" help:"Project ID (generated when empty)"`
		Industry    string `help:"Company industry, used for research and design"`
		Description string `help:"Short company description"`
		Domain      string `help:"Target domain for the published site"`
		Vibe        bool   `help:"Pause before interactive stages"`
	} `cmd:"" help:"Run the full generation pipeline for a company"`

	Resume struct {
		Project string `arg:"" help:"Project ID of the persisted run"`
	} `cmd:"" help:"Resume a persisted run from its current stage"`

	Status struct {
		Project string `arg:"" help:"Project ID of the persisted run"`
	} `cmd:"" help:"Show the persisted status of a run"`

	Stages struct{} `cmd:"" help:"List the pipeline stages and their properties"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "run <company>":
		if err := runGeneration(); err != nil {
			slog.Error("Generation failed", "error", err)
			os.Exit(1)
		}
	case "resume <project>":
		if err := runResume(); err != nil {
			slog.Error("Resume failed", "error", err)
			os.Exit(1)
		}
	case "status <project>":
		if err := runStatus(); err != nil {
			slog.Error("Status failed", "error", err)
			os.Exit(1)
		}
	case "stages":
		printStages()
	default:
		slog.Error("Unknown command", "command", ctx.Command())
		os.Exit(1)
	}
}

func runGeneration() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Run.Vibe {
		cfg.Pipeline.VibeMode = true
	}

	svc, store, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	defer store.Close()

	ctx, cancel := signalContext()
	defer cancel()

	summary, err := svc.StartGeneration(ctx, service.GenerationRequest{
		ProjectID:   CLI.Run.Project,
		CompanyName: CLI.Run.Company,
		Industry:    CLI.Run.Industry,
		Description: CLI.Run.Description,
		Domain:      CLI.Run.Domain,
	})
	if summary != nil {
		printSummary(summary)
	}
	return err
}

func runResume() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	svc, store, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	defer store.Close()

	ctx, cancel := signalContext()
	defer cancel()

	summary, err := svc.Resume(ctx, CLI.Resume.Project)
	if summary != nil {
		printSummary(summary)
	}
	return err
}

func runStatus() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	store, err := statestore.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Load(context.Background(), CLI.Status.Project)
	if err != nil {
		return err
	}

	fmt.Printf("Project:  %s\n", rec.ProjectID)
	fmt.Printf("Status:   %s\n", rec.Status)
	fmt.Printf("Stage:    %s\n", rec.CurrentStage)
	fmt.Printf("Progress: %d%%\n", rec.Progress)
	fmt.Printf("Updated:  %s\n", rec.UpdatedAt.Format("2006-01-02 15:04:05"))
	if rec.Error != "" {
		fmt.Printf("Error:    %s\n", rec.Error)
	}
	return nil
}

func printStages() {
	for i, stage := range pipeline.Stages() {
		meta := pipeline.Metadata(stage)
		flags := ""
		if meta.IsInteractive {
			flags += " interactive"
		}
		if meta.CanSkip {
			flags += " skippable"
		}
		fmt.Printf("%2d. %-10s %s (%s)%s\n", i+1, stage, meta.Name, meta.EstimatedDuration, flags)
	}
}

// buildService assembles the service with its store, optional NATS publisher,
// metrics recorder and janitor. The returned cleanup stops all of them.
func buildService(cfg *config.Config) (*service.Service, statestore.Store, func(), error) {
	store, err := statestore.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, nil, nil, err
	}

	var publisher *broadcast.Publisher
	if cfg.NATS.Enabled {
		publisher, err = broadcast.NewPublisher(cfg.NATS)
		if err != nil {
			store.Close()
			return nil, nil, nil, err
		}
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if CLI.Metrics != "" {
		registry := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
		go serveMetrics(CLI.Metrics, registry)
	}

	svc := service.New(cfg, store, publisher, recorder)

	var janitor *service.Janitor
	if cfg.Janitor.Enabled {
		janitor, err = service.NewJanitor(store, cfg.Janitor)
		if err != nil {
			svc.Close()
			store.Close()
			return nil, nil, nil, err
		}
		janitor.Start()
	}

	cleanup := func() {
		if janitor != nil {
			janitor.Stop()
		}
		svc.Close()
	}
	return svc, store, cleanup, nil
}

func serveMetrics(addr string, registry *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Metrics server stopped", "error", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func printSummary(summary *pipeline.PersistableSummary) {
	fmt.Printf("\nProject %s: %s (%d%%), stage %s\n",
		summary.ProjectID, summary.Status, summary.Progress, summary.CurrentStage)
	if summary.Error != "" {
		fmt.Printf("Error: %s\n", summary.Error)
	}
}
