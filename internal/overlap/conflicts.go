package overlap

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"plancal/internal/model"
)

// Conflict is a pair of overlapping events, identified by their index in the
// slice given to FindConflicts (I < J).
type Conflict struct {
	I, J   int
	First  model.PlanningEvent
	Second model.PlanningEvent
}

// Options tunes FindConflicts.
type Options struct {
	// Workers bounds the number of rows checked in parallel. Zero uses
	// GOMAXPROCS.
	Workers int
}

// FindConflicts checks every unordered pair of events and returns the
// overlapping ones ordered by (I, J). Each row i is handled by one goroutine
// that only writes its own slot, so no locking is needed.
func FindConflicts(ctx context.Context, events []model.PlanningEvent, opts Options) ([]Conflict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	rows := make([][]int, len(events))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range events {
		g.Go(func() error {
			for j := i + 1; j < len(events); j++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if Overlap(events[i], events[j]) {
					rows[i] = append(rows[i], j)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var conflicts []Conflict
	for i, row := range rows {
		for _, j := range row {
			conflicts = append(conflicts, Conflict{I: i, J: j, First: events[i], Second: events[j]})
		}
	}
	return conflicts, nil
}
