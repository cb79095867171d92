package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"plancal/internal/eventfile"
	appLog "plancal/internal/log"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-check FILE for conflicts on the watch_schedule",
		Long: `Scan FILE for conflicting events right away and then on every tick of
watch_schedule (standard 5-field cron syntax) until interrupted. The file is
re-read on every run, so edits are picked up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			// Signal handling.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case sig := <-sigCh:
					appLog.Info("signal received, shutting down", "signal", sig.String())
					cancel()
				case <-ctx.Done():
				}
			}()

			return runWatch(ctx, cmd.OutOrStdout(), a, args[0])
		},
	}
}

// runWatch scans once, then on every schedule tick until ctx is done.
func runWatch(ctx context.Context, out io.Writer, a *app, path string) error {
	scan := func() {
		doc, err := eventfile.Load(path)
		if err != nil {
			appLog.Error("watch: load failed", err, "path", path)
			return
		}
		entries, err := scanConflicts(ctx, doc, a.cfg.Workers)
		if err != nil {
			appLog.Error("watch: scan failed", err, "path", path)
			return
		}
		appLog.Info("watch: scan completed", "path", path, "events", len(doc.Events), "conflicts", len(entries))
		printConflicts(out, entries, len(doc.Events))
	}

	job := watchJob(scan)
	c := cron.New()
	if _, err := c.AddJob(a.cfg.WatchSchedule, job); err != nil {
		return err
	}

	job.Run()
	c.Start()
	appLog.Info("watch: scheduled", "path", path, "schedule", a.cfg.WatchSchedule)

	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("watch: stopped", "path", path)
	return nil
}

// watchJob wraps scan so that a tick arriving while the previous scan is still
// running is dropped instead of printing concurrently.
func watchJob(scan func()) cron.Job {
	return cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(scan))
}
