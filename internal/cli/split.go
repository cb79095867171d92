package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"plancal/internal/eventfile"
	"plancal/internal/model"
	"plancal/internal/split"
)

func newSplitCmd(a *app) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "split FILE OPEN_ID OTHER_ID...",
		Short: "Cut an event around the events it collides with",
		Long: `Split OPEN_ID into the fragments that remain once every OTHER_ID has
taken its dates and times. With --write, OPEN_ID is replaced in FILE by its
fragments, numbered OPEN_ID.1, OPEN_ID.2, ...`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			doc, evs, err := loadEvents(args[0], args[1:]...)
			if err != nil {
				return err
			}
			open, others := evs[0], evs[1:]

			fragments, err := split.SplitAgainst(open, others)
			if err != nil {
				return err
			}
			fragments = renumber(open.ID, fragments)

			if write {
				if err := replaceEvent(args[0], doc, open.ID, fragments); err != nil {
					return err
				}
			}

			if a.jsonOutput {
				return outputJSON(out, fragments)
			}

			if len(fragments) == 0 {
				printWarning(out, fmt.Sprintf("%s is entirely taken by %v", open.ID, args[2:]))
			} else {
				rows := make([][]string, 0, len(fragments))
				for _, f := range fragments {
					rows = append(rows, eventRow(f))
				}
				printTable(out, eventHeaders, rows)
			}
			if write {
				printSuccess(out, fmt.Sprintf("%s written with %s", args[0], countLabel(len(fragments), "fragment", "fragments")))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Replace OPEN_ID in FILE with its fragments")
	return cmd
}

// renumber gives fragments distinct IDs when there is more than one.
func renumber(id string, fragments []model.PlanningEvent) []model.PlanningEvent {
	if len(fragments) < 2 || id == "" {
		return fragments
	}
	out := make([]model.PlanningEvent, len(fragments))
	for i, f := range fragments {
		f.ID = fmt.Sprintf("%s.%d", id, i+1)
		out[i] = f
	}
	return out
}

func replaceEvent(path string, doc *eventfile.Document, id string, fragments []model.PlanningEvent) error {
	i := slices.IndexFunc(doc.Events, func(ev model.PlanningEvent) bool { return ev.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %q", eventfile.ErrNotFound, id)
	}
	doc.Events = slices.Replace(doc.Events, i, i+1, fragments...)
	return eventfile.Save(path, doc)
}
