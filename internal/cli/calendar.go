package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"plancal/internal/eventfile"
	"plancal/internal/ics"
	"plancal/internal/model"
	"plancal/internal/occurrence"
)

func newImportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import ICS_FILE",
		Short: "Convert an iCalendar file into an event file",
		Long: `Read the VEVENTs of ICS_FILE and write them as planning events.
Only weekly recurrence rules can be represented; other events are skipped
with a warning in the log. Without -o the YAML document goes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			events, err := ics.ParseICS(body)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			doc := &eventfile.Document{Events: events}

			if output != "" {
				if err := eventfile.Save(output, doc); err != nil {
					return err
				}
				if a.jsonOutput {
					return outputJSON(cmd.OutOrStdout(), doc)
				}
				printSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s imported into %s", countLabel(len(events), "event", "events"), output))
				return nil
			}

			if err := doc.Validate(); err != nil {
				return err
			}
			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), doc)
			}
			return writeYAML(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Event file to write")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		output      string
		from, until string
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the events of FILE as an iCalendar file",
		Long: `Write the events of FILE as a VCALENDAR. With --from/--until, the
occurrences in that window are exported one by one instead, without the
cancelled ones.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := eventfile.Load(args[0])
			if err != nil {
				return err
			}

			events := doc.Events
			if from != "" || until != "" {
				if events, err = exportWindow(a, events, from, until); err != nil {
					return err
				}
			}

			body := ics.Export(events, now())
			if output == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), body)
				return err
			}
			if err := os.WriteFile(output, []byte(body), 0o644); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s exported to %s", countLabel(len(events), "event", "events"), output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "ICS file to write (default stdout)")
	cmd.Flags().StringVar(&from, "from", "", "Export occurrences from this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Export occurrences up to this date (YYYY-MM-DD)")
	return cmd
}

// exportWindow expands events into uniquely named single occurrences.
func exportWindow(a *app, events []model.PlanningEvent, from, until string) ([]model.PlanningEvent, error) {
	start, err := dateFlag("from", from, today())
	if err != nil {
		return nil, err
	}
	end, err := dateFlag("until", until, start.AddWeeks(a.cfg.HorizonWeeks))
	if err != nil {
		return nil, err
	}
	res, err := occurrence.Expand(events, occurrence.Config{
		From:                   start,
		Until:                  end,
		MaxOccurrencesPerEvent: a.cfg.MaxOccurrencesPerEvent,
		SkipExceptions:         true,
	})
	if err != nil {
		return nil, err
	}
	out := res.Occurrences
	for i := range out {
		if out[i].ID != "" {
			out[i].ID = fmt.Sprintf("%s@%s", out[i].ID, out[i].StartDate)
		}
		out[i].Exceptions = nil
	}
	return out, nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
