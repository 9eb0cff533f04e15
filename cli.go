package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"raceready/internal/engine"
	"raceready/internal/httpapi"
	"raceready/internal/logger"
	"raceready/internal/service"
	"raceready/internal/tui"
)

const shutdownTimeout = 10 * time.Second

func (a *app) runTUI() error {
	ui := tui.NewApp(a.predictions, tui.NewUnits(a.cfg.Display), a.cfg.HistoryLimit)
	p := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func (a *app) runPredict(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	asOf := fs.String("as-of", "", "Evaluate as of this date (YYYY-MM-DD); default now")
	asJSON := fs.Bool("json", false, "Print the full result as JSON")
	dryRun := fs.Bool("dry-run", false, "Do not save a snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}

	when := time.Now()
	if *asOf != "" {
		d, err := parseDate(*asOf)
		if err != nil {
			return err
		}
		when = endOfDay(d)
	}

	var (
		res *engine.Result
		err error
	)
	if *dryRun {
		res, err = a.predictions.Evaluate(ctx, when)
	} else {
		res, err = a.predictions.Predict(ctx, when)
	}
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(out, res, tui.NewUnits(a.cfg.Display))
	return nil
}

func printResult(out io.Writer, res *engine.Result, units tui.Units) {
	if len(res.Predictions) == 0 {
		fmt.Fprintln(out, "Not enough data to estimate fitness. Import runs or add a race first.")
		return
	}

	fmt.Fprintf(out, "VDOT %.1f (%s), range %.1f-%.1f, confidence %s\n",
		res.VDOT, res.VDOTLabel, res.VDOTRange.Low, res.VDOTRange.High, res.Confidence)
	fmt.Fprintf(out, "%s\n", res.AgreementDetails)
	fmt.Fprintf(out, "Form: %s (%+.1f%%)\n\n", res.FormDescription, res.FormAdjustmentPct)

	fmt.Fprintf(out, "%-14s  %9s  %9s  %9s  %-17s  %s\n", "Distance", "Predicted", "Tapered", units.PaceLabel(), "Range", "Ready")
	for _, p := range res.Predictions {
		fmt.Fprintf(out, "%-14s  %9s  %9s  %9s  %-17s  %3.0f%%\n",
			p.Distance,
			tui.FormatRaceTime(p.PredictedSeconds),
			tui.FormatRaceTime(p.TaperedSeconds),
			units.FormatPace(p.PacePerMile),
			tui.FormatRaceTime(p.Range.Fast)+" - "+tui.FormatRaceTime(p.Range.Slow),
			p.Readiness*100,
		)
		for _, r := range p.AdjustmentReasons {
			fmt.Fprintf(out, "    %s\n", r)
		}
	}

	fmt.Fprintln(out, "\nSignals:")
	for _, s := range res.Signals {
		fmt.Fprintf(out, "  %-20s  %5.1f  weight %.2f  %s\n", s.Name, s.EstimatedVDOT, s.Weight, s.Description)
	}
}

func (a *app) runImport(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	name := fs.String("name", "", "Workout name")
	workoutType := fs.String("type", "", "Workout type: easy, long, tempo, interval, ...")
	race := fs.Bool("race", false, "The activity was a race")
	timeTrial := fs.Bool("time-trial", false, "The activity was a solo time trial")
	effort := fs.String("effort", engine.EffortAllOut, "Effort level for races and time trials")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: import [flags] file.fit [file.fit ...]")
	}

	opts := service.ImportOptions{
		Name:        *name,
		WorkoutType: *workoutType,
		Race:        *race,
		TimeTrial:   *timeTrial,
		EffortLevel: *effort,
	}

	var failed int
	for _, path := range fs.Args() {
		res, err := a.imports.ImportFile(ctx, path, opts)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s: %v\n", path, err)
			continue
		}
		line := fmt.Sprintf("%s: %s %.2f mi (%s), %d best efforts",
			path, res.StartTime.Format(time.DateOnly), res.Miles, res.WorkoutType, res.BestEfforts)
		if res.RaceRecorded {
			line += ", race " + res.RaceDistance
		}
		fmt.Fprintln(out, line)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, fs.NArg())
	}
	return nil
}

func (a *app) runRaceAdd(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("race add", flag.ContinueOnError)
	distance := fs.String("distance", "", "Race distance: 5K, 10K, half, marathon, mile, or a value like 8k / 5mi")
	finish := fs.String("time", "", "Finish time as h:mm:ss or mm:ss")
	date := fs.String("date", "", "Race date (YYYY-MM-DD)")
	effort := fs.String("effort", engine.EffortAllOut, "Effort level: all_out or hard")
	tempF := fs.Float64("temp", 0, "Temperature in °F (optional)")
	humidity := fs.Float64("humidity", 0, "Relative humidity % (optional)")
	elevation := fs.Float64("elevation", 0, "Elevation gain in feet (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	meters, err := parseDistance(*distance)
	if err != nil {
		return err
	}
	seconds, err := parseDuration(*finish)
	if err != nil {
		return err
	}
	day, err := parseDate(*date)
	if err != nil {
		return err
	}

	entry := service.RaceEntry{
		Date:           day,
		DistanceMeters: meters,
		TimeSeconds:    seconds,
		EffortLevel:    *effort,
	}
	// zero means "not given" for the optional conditions
	if *tempF != 0 {
		entry.WeatherTempF = tempF
	}
	if *humidity != 0 {
		entry.WeatherHumidityPct = humidity
	}
	if *elevation != 0 {
		entry.ElevationGainFt = elevation
	}

	id, err := a.imports.AddRace(ctx, entry)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "race %d saved: %.0f m in %s (VDOT %.1f)\n",
		id, meters, tui.FormatRaceTime(int(seconds)), engine.VDOTFromPerformance(meters, seconds))
	return nil
}

func (a *app) runHistory(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("limit", a.cfg.HistoryLimit, "Number of snapshots to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := a.predictions.History(ctx, *limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no snapshots saved yet")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %s  VDOT %5.1f  %-6s  %s\n",
			e.AsOf.Format(time.DateOnly), e.ComputedAt.Local().Format("2006-01-02 15:04"), e.VDOT, e.Confidence, e.ID)
	}
	return nil
}

func (a *app) runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", a.cfg.HTTPAddr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := httpapi.NewServer(a.predictions, a.metrics, a.log.Named("http"), a.cfg.HistoryLimit)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.Handler(os.Stdout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info(ctx, "http server listening", logger.String("addr", *addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info(context.Background(), "shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

func endOfDay(d time.Time) time.Time {
	return d.Add(24*time.Hour - time.Second)
}

// parseDuration reads h:mm:ss or mm:ss into seconds
func parseDuration(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: want h:mm:ss or mm:ss", s)
	}

	var total float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid time %q: want h:mm:ss or mm:ss", s)
		}
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("invalid time %q: minutes and seconds must be under 60", s)
		}
		total = total*60 + v
	}
	if total <= 0 {
		return 0, fmt.Errorf("invalid time %q: must be positive", s)
	}
	return total, nil
}

var namedDistances = map[string]float64{
	"mile":          engine.Distance1Mile,
	"1mile":         engine.Distance1Mile,
	"5k":            engine.Distance5K,
	"10k":           engine.Distance10K,
	"15k":           engine.Distance15K,
	"half":          engine.DistanceHalfMara,
	"halfmarathon":  engine.DistanceHalfMara,
	"half_marathon": engine.DistanceHalfMara,
	"marathon":      engine.DistanceMarathon,
}

// parseDistance accepts a named race distance or a number with a km, k,
// mi or m suffix
func parseDistance(s string) (float64, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if m, ok := namedDistances[key]; ok {
		return m, nil
	}

	units := []struct {
		suffix string
		meters float64
	}{
		{"km", 1000},
		{"mi", engine.Distance1Mile},
		{"k", 1000},
		{"m", 1},
	}
	for _, u := range units {
		if !strings.HasSuffix(key, u.suffix) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSuffix(key, u.suffix), 64)
		if err != nil || v <= 0 {
			break
		}
		return v * u.meters, nil
	}
	return 0, fmt.Errorf("invalid distance %q: use 5K, 10K, half, marathon, mile, or a value like 8k", s)
}
