package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"plancal/internal/config"
	appLog "plancal/internal/log"
)

var (
	version = "dev"

	// Colors for help output sections
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

// app carries global flag values and the loaded configuration to every
// subcommand.
type app struct {
	configPath string
	logLevel   string
	jsonOutput bool

	cfg *config.Config
}

// SetVersion sets the version reported by --version and `plancal version`.
func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// Execute builds the command tree and runs it against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "plancal",
		Version: version,
		Short:   "Weekly planning calendar checker",
		Long: `plancal works on weekly recurring planning events.

It expands events into dated occurrences, detects pairs of events that
collide, and splits an event around the ones it collides with.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.SetHelpFunc(customHelpFunc)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default: <user config dir>/plancal/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddGroup(&cobra.Group{ID: "analysis", Title: "Analysis:"})
	rootCmd.AddGroup(&cobra.Group{ID: "calendar-io", Title: "Calendar Import/Export:"})
	rootCmd.AddGroup(&cobra.Group{ID: "monitoring", Title: "Monitoring:"})
	rootCmd.AddGroup(&cobra.Group{ID: "cli-tooling", Title: "CLI & Tooling:"})

	for _, c := range []*cobra.Command{newExpandCmd(a), newOverlapCmd(a), newConflictsCmd(a), newSplitCmd(a)} {
		c.GroupID = "analysis"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{newImportCmd(a), newExportCmd(a)} {
		c.GroupID = "calendar-io"
		rootCmd.AddCommand(c)
	}
	watchCmd := newWatchCmd(a)
	watchCmd.GroupID = "monitoring"
	rootCmd.AddCommand(watchCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:     "version",
		Short:   "Print the plancal CLI version",
		Args:    cobra.NoArgs,
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, args []string) {
			target, _, err := cmd.Root().Find(args)
			if err != nil || target == nil {
				target = cmd.Root()
			}
			_ = target.Help()
		},
	})

	return rootCmd
}

// setup loads the configuration and applies the log level. The --log-level
// flag wins over the file and the environment.
func (a *app) setup() error {
	path := a.configPath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to locate config dir: %w", err)
		}
		path = filepath.Join(dir, "plancal", "config.yaml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}
	a.cfg = cfg

	levelName := cfg.LogLevel
	if a.logLevel != "" {
		levelName = a.logLevel
	}
	level, err := appLog.ParseLevel(levelName)
	if err != nil {
		return err
	}
	appLog.SetLevel(level)

	appLog.Debug("effective config",
		"config_path", path,
		"log_level", level,
		"horizon_weeks", cfg.HorizonWeeks,
		"max_occurrences_per_event", cfg.MaxOccurrencesPerEvent,
		"workers", cfg.Workers,
		"watch_schedule", cfg.WatchSchedule,
	)
	return nil
}

// customHelpFunc renders help with colored group titles.
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	} else if cmd.Short != "" {
		help.WriteString(cmd.Short)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")
		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailableInheritedFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	}

	fmt.Fprint(cmd.OutOrStdout(), help.String())
}
