package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/altmm/altmm/internal/dedup"
	"github.com/altmm/altmm/scan"
)

var watchCmd = &cobra.Command{
	Use:   "watch <database> [output]",
	Short: "Report again every time the database changes",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		config, err := loadConfig(scanFlags{configPath: cfgFile, includeFloating: includeFloating})
		if err != nil {
			logger.Error("Invalid configuration", zap.Error(err))
			exitCode = exitFailure
			return
		}
		if err := scan.Watch(ctx, logger, args[0], config, reportPrinter(logger, args, cmd.OutOrStdout())); err != nil {
			logger.Error("Watch failed", zap.Error(err))
			exitCode = exitFailure
		}
	},
}

// reportPrinter prints the outcome of each watch pass.
func reportPrinter(logger *zap.Logger, args []string, out io.Writer) func(*scan.Result, error) {
	return func(result *scan.Result, err error) {
		if err != nil && dedup.IsInvariantViolation(err) {
			logger.Error("Internal invariant violated, no report produced", zap.Error(err))
			return
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if printErr := printReport(out, result.Report, jsonOutput); printErr != nil {
			logger.Error("Error printing report", zap.Error(printErr))
		}
		if len(args) > 1 {
			if saveErr := scan.SaveReport(args[1], result.Report); saveErr != nil {
				logger.Error("Error writing report file", zap.String("path", args[1]), zap.Error(saveErr))
			}
		}
	}
}
