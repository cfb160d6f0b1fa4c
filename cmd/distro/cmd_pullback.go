package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"DistroDash/internal/domain/models"
	"DistroDash/internal/usecase"
)

var (
	pullbackReq         models.PullbackRequest
	establish, reversal float64
)

var pullbackCmd = &cobra.Command{
	Use:   "pullback",
	Short: "Detect the initial move and pullback after each trigger",
	Long: `Triggers come from calendar events whose name starts with --event, or from
explicit --trigger timestamps. Minute bars are used unless --bar-interval says otherwise.`,
	RunE: runPullback,
}

func init() {
	rootCmd.AddCommand(pullbackCmd)
	f := pullbackCmd.Flags()
	f.StringVar(&pullbackReq.Event, "event", "", "Event name prefix selecting the triggers")
	f.StringSliceVar(&pullbackReq.Triggers, "trigger", nil, "Explicit trigger time, repeatable")
	f.Float64Var(&establish, "establish", models.DefaultEstablishBps, "Bps needed to establish the initial move")
	f.Float64Var(&reversal, "reverse", models.DefaultReverseBps, "Bps against the move that ends it")
	f.BoolVar(&pullbackReq.FilterInitial, "filter", false, "Keep only pairs whose initial magnitude is within --lower/--upper")
	f.Float64Var(&pullbackReq.Lower, "lower", 0, "Lower initial magnitude")
	f.Float64Var(&pullbackReq.Upper, "upper", 0, "Upper initial magnitude")
	addRangeFlags(pullbackCmd, &pullbackReq.DataRange)
}

func runPullback(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	req := pullbackReq
	req.EstablishBps, req.ReverseBps = &establish, &reversal
	if err := validate(&req); err != nil {
		return err
	}
	uc := usecase.NewPullbackUseCase(e.bars, e.events, e.metrics, e.settings, e.l)
	rep, err := uc.Pullbacks(cmd.Context(), req)
	if err != nil {
		return err
	}
	if output == "json" {
		return writeJSON(cmd.OutOrStdout(), rep)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d triggers, %d pairs\n", rep.Triggers, len(rep.Pairs))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "trigger\tinitial\tbps\tpullback\tbps")
	for _, p := range rep.Pairs {
		fmt.Fprintf(tw, "%s\t%s %s\t%.2f\t%s %s\t%.2f\n",
			p.Trigger.In(e.settings.Location).Format(time.DateTime),
			p.Initial.Direction, p.Initial.Timestamp.In(e.settings.Location).Format(time.TimeOnly), p.Initial.Magnitude,
			p.Pullback.Direction, p.Pullback.Timestamp.In(e.settings.Location).Format(time.TimeOnly), p.Pullback.Magnitude,
		)
	}
	return tw.Flush()
}
