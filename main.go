package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"raceready/internal/config"
	"raceready/internal/logger"
	"raceready/internal/metrics"
	"raceready/internal/service"
	"raceready/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (default ~/.raceready/config.yaml)")
	flag.Usage = usage
	flag.Parse()

	if err := run(context.Background(), *configPath, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "raceready: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [-config file] <command> [flags]\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  tui        interactive predictions and history (default)")
	fmt.Fprintln(out, "  predict    compute predictions and save a snapshot")
	fmt.Fprintln(out, "  import     import one or more .fit activity files")
	fmt.Fprintln(out, "  race add   record a race result by hand")
	fmt.Fprintln(out, "  history    list saved prediction snapshots")
	fmt.Fprintln(out, "  serve      run the HTTP API")
	fmt.Fprintln(out)
	flag.PrintDefaults()
}

// app holds the wired dependencies shared by every command
type app struct {
	cfg         *config.Config
	log         logger.Logger
	db          *store.DB
	metrics     *metrics.Manager
	predictions *service.PredictionService
	imports     *service.ImportService
	closers     []io.Closer
}

func run(ctx context.Context, configPath string, args []string) error {
	cmd := "tui"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The TUI owns the terminal, so its logs go to a file.
	logOut := io.Writer(os.Stderr)
	var closers []io.Closer
	if cmd == "tui" {
		f, err := openLogFile()
		if err != nil {
			return err
		}
		logOut = f
		closers = append(closers, f)
	}

	a, err := newApp(cfg, logOut)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closers...)
	defer a.Close()

	switch cmd {
	case "tui":
		return a.runTUI()
	case "predict":
		return a.runPredict(ctx, args, os.Stdout)
	case "import":
		return a.runImport(ctx, args, os.Stdout)
	case "race":
		if len(args) == 0 || args[0] != "add" {
			return fmt.Errorf("usage: race add -distance 5K -time 21:30 -date 2024-05-04")
		}
		return a.runRaceAdd(ctx, args[1:], os.Stdout)
	case "history":
		return a.runHistory(ctx, args, os.Stdout)
	case "serve":
		return a.runServe(ctx, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	log, err := logger.New(logOut, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	m := metrics.NewManager()
	return &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		metrics: m,
		predictions: service.NewPredictionService(db, cfg.Athlete,
			service.WithMetrics(m),
			service.WithLogger(log.Named("prediction")),
		),
		imports: service.NewImportService(db, m, log.Named("import")),
		closers: []io.Closer{db},
	}, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

func openLogFile() (*os.File, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("finding config dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "raceready.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
