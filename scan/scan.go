package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/altmm/altmm/internal/dedup"
	"github.com/altmm/altmm/internal/mm"
)

// Result is the outcome of processing one database.
type Result struct {
	Report *dedup.Report
	// Files lists the database and the files it includes.
	Files []string
	// Assertions is the number of assertions accepted.
	Assertions int
}

// ProcessDatabase reads the database at path and groups its duplicate
// assertions. When progress is not nil a progress bar is drawn on it.
//
// Database errors are returned together with a Result built from the
// statements read before the failure. Errors for which
// dedup.IsInvariantViolation holds mean the result must not be trusted.
func ProcessDatabase(
	ctx context.Context,
	logger *zap.Logger,
	path string,
	config Config,
	progress io.Writer,
) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := config.Options()
	opts.Logger = logger

	db := mm.NewDatabase()
	engine := dedup.NewEngine(db, opts)
	readerOpts := []mm.Option{
		mm.WithAssertionHook(engine),
		mm.WithDeclarationHook(engine),
		mm.WithLogger(logger),
	}
	if progress != nil {
		readerOpts = append(readerOpts, mm.WithOpenFunc(progressOpen(progress)))
	}
	reader := mm.NewReader(db, readerOpts...)

	err := reader.Read(ctx, path)
	result := &Result{
		Report:     engine.Report(),
		Files:      reader.Files(),
		Assertions: len(engine.Index().Log()),
	}
	if err != nil {
		logger.Error("Error processing database", zap.String("path", path), zap.Error(err))
		return result, err
	}

	logger.Debug("Database processed",
		zap.String("path", path),
		zap.Int("assertions", result.Assertions),
		zap.Int("classes", engine.Index().Len()),
		zap.Int("groups", result.Report.UniqueRepeated))
	return result, nil
}

// SaveReport writes the plain report text to path.
func SaveReport(path string, report *dedup.Report) error {
	if err := os.WriteFile(path, []byte(report.String()), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

type progressReader struct {
	io.Reader
	file *os.File
	bar  *progressbar.ProgressBar
}

func (p *progressReader) Close() error {
	_ = p.bar.Finish()
	return p.file.Close()
}

// progressOpen opens database files with a byte progress bar drawn on w.
func progressOpen(w io.Writer) mm.OpenFunc {
	return func(name string) (io.ReadCloser, error) {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, err
		}

		bar := progressbar.NewOptions64(info.Size(),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(filepath.Base(name)),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))

		return &progressReader{
			Reader: io.TeeReader(f, bar),
			file:   f,
			bar:    bar,
		}, nil
	}
}
