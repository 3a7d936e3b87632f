package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/altmm/altmm/formatter"
	"github.com/altmm/altmm/internal/dedup"
	"github.com/altmm/altmm/scan"
)

// Exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitInvariant = 2
)

type scanFlags struct {
	configPath      string
	timeout         time.Duration
	progress        bool
	json            bool
	includeFloating bool
}

// loadConfig reads the configuration file and applies the flags on top.
func loadConfig(flags scanFlags) (scan.Config, error) {
	config, err := scan.LoadConfig(flags.configPath)
	if err != nil {
		return config, fmt.Errorf("loading configuration %s: %w", flags.configPath, err)
	}
	if flags.includeFloating {
		config.IncludeFloatingHypotheses = true
	}
	return config, nil
}

// runScan processes args[0] and prints the report, writing it to args[1]
// as well when given. The report is printed even when the database turns
// out to be invalid; the exit code tells the two cases apart.
func runScan(ctx context.Context, logger *zap.Logger, args []string, flags scanFlags, out io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	config, err := loadConfig(flags)
	if err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return exitFailure
	}

	var progress io.Writer
	if flags.progress {
		progress = os.Stderr
	}

	result, err := scan.ProcessDatabase(ctx, logger, args[0], config, progress)
	if err != nil && dedup.IsInvariantViolation(err) {
		logger.Error("Internal invariant violated, no report produced", zap.Error(err))
		return exitInvariant
	}

	code := exitOK
	if err != nil {
		code = exitFailure
	}

	if printErr := printReport(out, result.Report, flags.json); printErr != nil {
		logger.Error("Error printing report", zap.Error(printErr))
		code = exitFailure
	}

	if len(args) > 1 {
		if saveErr := scan.SaveReport(args[1], result.Report); saveErr != nil {
			logger.Error("Error writing report file", zap.String("path", args[1]), zap.Error(saveErr))
			code = exitFailure
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.Error("Timed out reading database", zap.Duration("timeout", flags.timeout))
	}
	return code
}

func printReport(out io.Writer, report *dedup.Report, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprint(out, formatter.GenerateFormattedReport(report))
		return err
	}
	d, err := formatter.GenerateJSONReport(report)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(d))
	return err
}
