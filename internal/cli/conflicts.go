package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"plancal/internal/eventfile"
	"plancal/internal/overlap"
)

// errConflictsFound makes `conflicts --fail` exit non-zero.
var errConflictsFound = errors.New("conflicting events found")

type conflictEntry struct {
	First  string `json:"first"`
	Second string `json:"second"`
	I      int    `json:"i"`
	J      int    `json:"j"`
}

func newConflictsCmd(a *app) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "conflicts FILE",
		Short: "List every pair of colliding events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := eventfile.Load(args[0])
			if err != nil {
				return err
			}
			entries, err := scanConflicts(cmd.Context(), doc, a.cfg.Workers)
			if err != nil {
				return err
			}

			if a.jsonOutput {
				if err := outputJSON(cmd.OutOrStdout(), entries); err != nil {
					return err
				}
			} else {
				printConflicts(cmd.OutOrStdout(), entries, len(doc.Events))
			}

			if fail && len(entries) > 0 {
				return errConflictsFound
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with an error when conflicts are found")
	return cmd
}

func scanConflicts(ctx context.Context, doc *eventfile.Document, workers int) ([]conflictEntry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	conflicts, err := overlap.FindConflicts(ctx, doc.Events, overlap.Options{Workers: workers})
	if err != nil {
		return nil, err
	}
	entries := make([]conflictEntry, 0, len(conflicts))
	for _, c := range conflicts {
		entries = append(entries, conflictEntry{
			First:  label(c.First.ID, c.I),
			Second: label(c.Second.ID, c.J),
			I:      c.I,
			J:      c.J,
		})
	}
	return entries, nil
}

func printConflicts(w io.Writer, entries []conflictEntry, total int) {
	if len(entries) == 0 {
		printSuccess(w, fmt.Sprintf("no conflicts among %s", countLabel(total, "event", "events")))
		return
	}
	for _, e := range entries {
		printConflict(w, fmt.Sprintf("%s overlaps %s", e.First, e.Second))
	}
	printWarning(w, countLabel(len(entries), "conflict", "conflicts")+" found")
}

func label(id string, index int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("#%d", index)
}
