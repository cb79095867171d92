package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"plancal/internal/intmath"
	"plancal/internal/model"
	"plancal/internal/overlap"
)

type overlapReport struct {
	First   string `json:"first"`
	Second  string `json:"second"`
	Overlap bool   `json:"overlap"`
	// Dates lists the shared dates when there are finitely many.
	Dates []model.Date `json:"dates,omitempty"`
	// From and EveryWeeks describe an endless series of shared dates.
	From       *model.Date `json:"from,omitempty"`
	EveryWeeks int         `json:"every_weeks,omitempty"`
}

func newOverlapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overlap FILE ID ID",
		Short: "Check whether two events collide",
		Long: `Check whether the two events ever take place on the same date with
overlapping times of day, and list the dates they share.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, evs, err := loadEvents(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			report := buildOverlapReport(evs[0], evs[1])

			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), report)
			}
			printOverlapReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func buildOverlapReport(x, y model.PlanningEvent) overlapReport {
	r := overlapReport{First: x.ID, Second: y.ID, Overlap: overlap.Overlap(x, y)}

	dates, finite := overlap.Coincidences(x, y)
	if finite {
		r.Dates = dates
		return r
	}
	first := overlap.FirstCoincidence(x, y)
	r.From = &first
	r.EveryWeeks = intmath.LCM(x.WeeksPeriod, y.WeeksPeriod)
	return r
}

func printOverlapReport(w io.Writer, r overlapReport) {
	if r.Overlap {
		printConflict(w, fmt.Sprintf("%s and %s overlap", r.First, r.Second))
	} else {
		printSuccess(w, fmt.Sprintf("%s and %s do not overlap", r.First, r.Second))
	}

	switch {
	case r.From != nil:
		fmt.Fprintf(w, "  shared dates: every %d weeks from %s\n", r.EveryWeeks, r.From)
	case len(r.Dates) > 0:
		fmt.Fprintf(w, "  shared dates (%s):\n", countLabel(len(r.Dates), "date", "dates"))
		for _, d := range r.Dates {
			fmt.Fprintf(w, "    %s\n", d)
		}
	default:
		printEmptyState(w, "no shared dates")
	}
}
