package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"DistroDash/internal/domain/models"
	"DistroDash/internal/usecase"
)

var (
	matrixReq   models.ProbabilityRequest
	matrixHours int
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Build the probability matrix around a target horizon",
	RunE:  runMatrix,
}

func init() {
	rootCmd.AddCommand(matrixCmd)
	f := matrixCmd.Flags()
	f.Float64Var(&matrixReq.TargetBps, "bps", 0, "Target move in bps")
	f.IntVar(&matrixHours, "hours", models.DefaultTargetHours, "Target horizon in hours")
	f.StringVar(&matrixReq.Version, "version", "NA", "Absolute|Up|Down|No-Version|NA")
	addRangeFlags(matrixCmd, &matrixReq.DataRange)
}

func addRangeFlags(cmd *cobra.Command, r *models.DataRange) {
	f := cmd.Flags()
	f.StringVar(&r.From, "from", "", "Start time, inclusive")
	f.StringVar(&r.To, "to", "", "End time, exclusive")
	f.StringVar(&r.Interval, "bar-interval", "", "Bar interval override (1m|5m|1h)")
	f.StringVar(&r.Dataset, "dataset", "", "all|nonevents")
}

func runMatrix(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	req := matrixReq
	req.TargetHours = &matrixHours
	if err := validate(&req); err != nil {
		return err
	}
	uc := usecase.NewProbabilityUseCase(e.bars, nil, e.metrics, e.settings, e.l)
	rep, err := uc.Matrix(cmd.Context(), req)
	if err != nil {
		return err
	}
	if output == "json" {
		return writeJSON(cmd.OutOrStdout(), rep)
	}
	for _, res := range rep.Results {
		printMatrixResult(cmd.OutOrStdout(), res)
	}
	return nil
}

func printMatrixResult(w io.Writer, res models.MatrixResult) {
	for _, mode := range models.Modes {
		m := res.Matrices[mode]
		if m == nil {
			continue
		}
		st := res.AtOrBelow[mode]
		fmt.Fprintf(w, "\n%s / %s  target %.1f bps in %dh: %s at or below (%d samples)\n",
			res.Version, mode, res.TargetBps, res.TargetHours, models.FormatPercent(st.Percent), st.Samples)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprint(tw, "bps\t")
		for _, c := range m.Columns {
			fmt.Fprintf(tw, "%dh\t", c.Hours)
		}
		fmt.Fprintln(tw)
		for r, cells := range m.Formatted() {
			fmt.Fprintf(tw, "%s\t", strconv.FormatFloat(m.Rows[r], 'f', -1, 64))
			for _, cell := range cells {
				fmt.Fprintf(tw, "%s\t", cell)
			}
			fmt.Fprintln(tw)
		}
		_ = tw.Flush()
	}
}
