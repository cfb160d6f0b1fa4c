package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"DistroDash/internal/domain/models"
	"DistroDash/internal/domain/repository"
	internalrepo "DistroDash/internal/repository"
	"DistroDash/internal/services/events"
	"DistroDash/internal/usecase"
	xhttp "DistroDash/pkg/http"
	applogger "DistroDash/pkg/logger"
	"DistroDash/pkg/metrics"
)

var (
	barDir     string
	eventsFile string
	symbol     string
	interval   string
	timezone   string
	factor     float64
	since      string
	output     string
	verbose    bool
)

// rootCmd runs the analyses offline against parquet bars and a CSV calendar.
var rootCmd = &cobra.Command{
	Use:   "distro",
	Short: "Offline distribution analysis over parquet bars and an events CSV",
	Long: `distro reads bar files named <symbol>_<interval>_<dataset>.parquet from a
directory and an economic calendar CSV, and prints the same reports the API serves.

Examples:
  distro matrix --bars ./data/bars --bps 4 --hours 6
  distro pullback --bars ./data/bars --events ./data/economic_events.csv --event "Initial Jobless"
  distro returns --bars ./data/bars --events ./data/economic_events.csv --event CPI --total-hours 2`,
	SilenceUsage: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&barDir, "bars", "./data/bars", "Directory of parquet bar files")
	f.StringVar(&eventsFile, "events", "./data/economic_events.csv", "Economic calendar CSV")
	f.StringVar(&symbol, "symbol", "ZN", "Instrument symbol")
	f.StringVar(&interval, "interval", "1h", "Default bar interval (1m|5m|1h)")
	f.StringVar(&timezone, "tz", "America/New_York", "Instrument timezone")
	f.Float64Var(&factor, "factor", 16, "Price delta to bps multiplier")
	f.StringVar(&since, "since", "2022-12-20", "Ignore announcements before this date")
	f.StringVarP(&output, "output", "o", "table", "Output format (table|json)")
	f.BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env holds the sources shared by every subcommand.
type env struct {
	settings usecase.Settings
	bars     repository.BarSource
	events   repository.EventSource
	catalog  events.Catalog
	metrics  metrics.Nop
	l        *applogger.Logger
}

func newEnv() (*env, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("--tz: %w", err)
	}
	iv := models.Interval(interval)
	if !iv.IsValid() {
		return nil, fmt.Errorf("--interval must be 1m, 5m or 1h, got %q", interval)
	}
	var cutoff time.Time
	if since != "" {
		if cutoff, err = time.ParseInLocation(time.DateOnly, since, loc); err != nil {
			return nil, fmt.Errorf("--since: %w", err)
		}
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	l := applogger.NewWriter(os.Stderr, level)

	bars := internalrepo.NewParquetBarStore(barDir, loc)
	bars.SetLogger(l)
	evts := internalrepo.NewCSVEventStore(eventsFile, loc, cutoff, events.DefaultPercentageEvents())
	evts.SetLogger(l)

	return &env{
		settings: usecase.Settings{
			Symbol:   symbol,
			Factor:   factor,
			Interval: iv,
			Location: loc,
			Timeout:  10 * time.Minute,
		},
		bars:    bars,
		events:  evts,
		catalog: events.DefaultCatalog(),
		l:       l,
	}, nil
}

// validate applies request defaults and tag rules like the API does.
func validate(req interface{}) error {
	verrs := xhttp.ValidateStruct(req)
	if len(verrs) == 0 {
		return nil
	}
	msg := "invalid arguments:"
	for _, v := range verrs {
		msg += " " + v.Message + ";"
	}
	return errors.New(msg)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
