package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/altmm/altmm/scan"
)

var (
	cfgFile         string
	timeout         time.Duration
	verbose         bool
	showProgress    bool
	jsonOutput      bool
	includeFloating bool

	logger *zap.Logger

	// exitCode is set by the command that ran and returned by Execute, so
	// that PersistentPostRun still flushes the logger on failure.
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "altmm <database> [output]",
	Short: "altmm - find assertions proved more than once in a Metamath database",
	Long: `Reads a Metamath database and lists the groups of assertions which have the
same conclusion, hypotheses and disjoint variable restrictions under different
labels. Labels marked as known alternatives (ALT, OLD, ...) and labels which
only differ by hyphens are not reported.

If an output path is given, the report is also written to that file.`,
	TraverseChildren: true, // Prioritize subcommands
	Args:             cobra.MaximumNArgs(2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// no database given
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		exitCode = runScan(cmd.Context(), logger, args, scanFlags{
			configPath:      cfgFile,
			timeout:         timeout,
			progress:        showProgress,
			json:            jsonOutput,
			includeFloating: includeFloating,
		}, cmd.OutOrStdout())
	},
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	exitCode = exitOK
	if err := rootCmd.Execute(); err != nil {
		return exitFailure
	}
	return exitCode
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", scan.DefaultConfigFile, "Path to the configuration file")
	flags.DurationVar(&timeout, "timeout", 30*time.Minute, "Give up on a database after this long")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&showProgress, "progress", stderrIsTerminal(), "Show a progress bar while reading")
	flags.BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	flags.BoolVar(&includeFloating, "include-floating", false, "Compare floating ($f) hypotheses too")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(watchCmd)
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
