package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/charliek/wip/internal/config"
	"github.com/charliek/wip/internal/constants"
	"github.com/charliek/wip/internal/domain"
	"github.com/charliek/wip/internal/logging"
	"github.com/charliek/wip/internal/ui"
	"github.com/charliek/wip/internal/version"
)

const (
	// DefaultOperationTimeout bounds a whole command invocation,
	// including ai streaming (5 minutes)
	DefaultOperationTimeout = 5 * time.Minute
)

var (
	// Global flags
	cfgFile        string
	verbose        bool
	jsonOut        bool
	nonInteractive bool
	debug          bool
	debugFile      string
	maxLogFiles    int
	untrackedStats bool

	// Shared state
	cfg    *config.Config
	output *ui.Output
)

// rootCmd represents the base command; running it with no subcommand
// shows the briefing
var rootCmd = &cobra.Command{
	Use:   "wip",
	Short: "Where did I leave off? A morning briefing for developers",
	Long: `wip scans your local git repositories and reports, per repo, what is
dirty, stashed, ahead/behind its remote, which branches and commits are
recent, and which recent commits look like the work of a coding agent.

Running wip with no arguments shows the briefing.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize output handler
		output = ui.NewOutput(verbose, jsonOut)

		// Set non-interactive mode
		ui.SetNonInteractive(nonInteractive)

		if err := logging.Initialize(debug, debugFile, maxLogFiles); err != nil {
			return err
		}

		// Skip config loading for commands that don't need it
		if !needsConfig(cmd) {
			return nil
		}

		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		return nil
	},
	RunE:          runBriefing,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// needsConfig returns true if the command requires configuration.
// Worklist and setup commands work without a config file.
func needsConfig(cmd *cobra.Command) bool {
	// Commands that don't need config
	noConfigCmds := map[string]bool{
		"init":       true,
		"show":       true,
		"config":     true,
		"add":        true,
		"done":       true,
		"list":       true,
		"doctor":     true,
		"ai":         true,
		"help":       true,
		"completion": true,
		"version":    true,
	}

	return !noConfigCmds[cmd.Name()]
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		// Print error if output is available
		if output != nil {
			output.Error("%v", err)
		} else {
			// Fallback if output isn't initialized
			ui.NewOutput(false, false).Error("%v", err)
		}

		// Return exit code error
		return domain.WrapWithExitCode(err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.wip/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show full detail")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "disable interactive prompts (for scripts)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs to a file")
	rootCmd.PersistentFlags().StringVar(&debugFile, "debug-file", "", "debug log file (default: a fresh file in the state directory)")
	rootCmd.PersistentFlags().IntVar(&maxLogFiles, "max-log-files", constants.DefaultMaxLogFiles, "debug log files to keep")

	rootCmd.Flags().BoolVar(&untrackedStats, "untracked-stats", false, "count lines in untracked files")

	// Set version template
	rootCmd.SetVersionTemplate("wip {{.Version}}\n")

	// Add commands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(aiCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

// GetConfig returns the loaded configuration (for use by subcommands)
func GetConfig() *config.Config {
	return cfg
}

// GetOutput returns the output handler (for use by subcommands)
func GetOutput() *ui.Output {
	return output
}

// signalContext returns a context that is cancelled on SIGINT, SIGTERM, or timeout
func signalContext() (context.Context, context.CancelFunc) {
	// Create context with timeout
	ctx, timeoutCancel := context.WithTimeout(context.Background(), DefaultOperationTimeout)

	// Create cancellable context for signal handling
	ctx, signalCancel := context.WithCancel(ctx)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-c:
			signalCancel()
		case <-ctx.Done():
		}
		signal.Stop(c)
		// Drain any pending signal to prevent goroutine leak
		select {
		case <-c:
		default:
		}
	}()

	// Return a combined cancel function
	return ctx, func() {
		signalCancel()
		timeoutCancel()
	}
}
