package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"plancal/internal/model"
	"plancal/internal/occurrence"
)

func newExpandCmd(a *app) *cobra.Command {
	var (
		from, until    string
		skipExceptions bool
	)

	cmd := &cobra.Command{
		Use:   "expand FILE",
		Short: "List the dated occurrences of every event",
		Long: `List every occurrence of the events in FILE between --from and --until
(inclusive). --from defaults to today and --until to horizon_weeks later.

Cancelled occurrences are listed and marked unless --skip-exceptions is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			doc, _, err := loadEvents(args[0])
			if err != nil {
				return err
			}
			start, err := dateFlag("from", from, today())
			if err != nil {
				return err
			}
			end, err := dateFlag("until", until, start.AddWeeks(a.cfg.HorizonWeeks))
			if err != nil {
				return err
			}

			res, err := occurrence.Expand(doc.Events, occurrence.Config{
				From:                   start,
				Until:                  end,
				MaxOccurrencesPerEvent: a.cfg.MaxOccurrencesPerEvent,
				SkipExceptions:         skipExceptions,
			})
			if err != nil {
				return err
			}

			if a.jsonOutput {
				return outputJSON(out, res)
			}

			if len(res.Occurrences) == 0 {
				printEmptyState(out, "No occurrences between "+start.String()+" and "+end.String())
				return nil
			}

			occs := slices.Clone(res.Occurrences)
			slices.SortStableFunc(occs, func(x, y model.PlanningEvent) int {
				if c := x.StartDate.Compare(y.StartDate); c != 0 {
					return c
				}
				return int(x.StartTime - y.StartTime)
			})

			rows := make([][]string, 0, len(occs))
			for _, o := range occs {
				note := ""
				if o.IsException(o.StartDate) {
					note = "cancelled"
				}
				rows = append(rows, []string{
					o.StartDate.String(),
					o.StartDate.Weekday().String()[:3],
					o.StartTime.String() + "-" + o.EndTime.String(),
					o.ID,
					o.Title,
					note,
				})
			}
			printTable(out, []string{"DATE", "DAY", "TIME", "ID", "TITLE", "NOTE"}, rows)

			for _, id := range res.TruncatedEvents {
				printWarning(out, "occurrences of "+id+" were truncated at max_occurrences_per_event")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date of the window (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&until, "until", "", "Last date of the window (YYYY-MM-DD, default from + horizon_weeks)")
	cmd.Flags().BoolVar(&skipExceptions, "skip-exceptions", false, "Leave out cancelled occurrences")
	return cmd
}
