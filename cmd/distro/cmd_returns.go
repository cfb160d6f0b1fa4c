package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"DistroDash/internal/domain/models"
	"DistroDash/internal/services/returns"
	"DistroDash/internal/usecase"
)

var (
	returnsReq              models.EventReturnsRequest
	excluded                []int
	totalHours, windowHours float64
)

var returnsCmd = &cobra.Command{
	Use:   "returns",
	Short: "Returns around the releases of an economic event",
	RunE:  runReturns,
}

func init() {
	rootCmd.AddCommand(returnsCmd)
	f := returnsCmd.Flags()
	f.StringVar(&returnsReq.Event, "event", "", "Event family, e.g. CPI")
	f.Float64Var(&totalHours, "total-hours", models.DefaultTotalHours, "Window length from the event hour; negative looks back")
	f.Float64Var(&returnsReq.OmitHours, "omit-hours", 0, "Hours trimmed next to the event")
	f.BoolVar(&returnsReq.Isolate, "isolate", false, "Drop instances with excluded-tier neighbours")
	f.BoolVar(&returnsReq.Group, "group", false, "Keep instances released near --group-event")
	f.StringVar(&returnsReq.GroupEvent, "group-event", "", "Event family for --group")
	f.Float64Var(&windowHours, "window-hours", models.DefaultWindowHours, "Neighbourhood for --isolate and --group")
	f.IntSliceVar(&excluded, "exclude-tier", nil, "Tiers that disqualify a neighbour, repeatable")
	f.BoolVar(&returnsReq.RequireAllSubEvents, "require-all", false, "Require every sub-event to be released")
	f.IntVar(&returnsReq.LastX, "last", 0, "Keep only the most recent N records")
	addRangeFlags(returnsCmd, &returnsReq.DataRange)
}

func runReturns(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	req := returnsReq
	req.ExcludeTiers = excluded
	req.TotalHours, req.WindowHours = &totalHours, &windowHours
	if err := validate(&req); err != nil {
		return err
	}
	uc := usecase.NewEventReturnsUseCase(e.bars, e.events, e.catalog, e.metrics, e.settings, e.l)
	rep, err := uc.EventReturns(cmd.Context(), req)
	if err != nil {
		return err
	}
	if output == "json" {
		return writeJSON(cmd.OutOrStdout(), rep)
	}

	w := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "start\tend\treturn\tabs\trange")
	for _, r := range rep.Records {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\n",
			r.Start.In(e.settings.Location).Format(time.DateTime), r.End.In(e.settings.Location).Format(time.DateTime),
			r.Return, r.AbsoluteReturn, r.RangeReturn)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printStats(w, rep.Stats)
	return nil
}

func printStats(w io.Writer, stats map[string]models.Stats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\ncolumn\tcount\tmean\tstd\tmin\tmax\tskew\tkurt")
	for _, col := range returns.Columns {
		s, ok := stats[string(col)]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			col, s.Count, s.Mean, s.Std, s.Min, s.Max, s.Skewness, s.Kurtosis)
	}
	_ = tw.Flush()
}
