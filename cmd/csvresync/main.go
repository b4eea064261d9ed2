// Command csvresync counts the records in a CSV file, optionally
// partitioning it into byte ranges via the resync oracle and parsing the
// ranges in parallel.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	csvresync "github.com/dsvtools/csvresync"
	"go.uber.org/zap"
)

var (
	parallelLong  = flag.Bool("parallel", false, "partition the file into byte ranges and parse them in parallel")
	parallelShort = flag.Bool("p", false, "shorthand for -parallel")
	verbose       = flag.Bool("v", false, "enable verbose (debug-level) logging")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: csvresync [-p|--parallel] [-v] <path>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := newLogger(*verbose)
	defer logger.Sync()

	count, err := run(path, *parallelLong || *parallelShort, logger)
	if err != nil {
		logger.Error("csvresync failed", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println(count)
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// run implements the program's single application: counting records. On
// a header-only or empty file it returns 0 without consulting the oracle.
func run(path string, parallel bool, logger *zap.Logger) (int64, error) {
	opener := fileOpener(path)

	header, err := opener(0)
	if err != nil {
		return 0, &csvresync.Error{Kind: csvresync.IoError, Err: err}
	}
	defer header.Close()

	opts := csvresync.NewOptions()
	stats, err := csvresync.ScanSample(header, opts)
	if err == csvresync.ErrEmptyInput {
		logger.Debug("empty input; reporting zero records", zap.String("path", path))
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if !parallel || stats.MaxRecordSize == 0 {
		return serialCount(opener, opts)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, &csvresync.Error{Kind: csvresync.IoError, Err: err}
	}
	fileLen := info.Size()

	opts.Threads = clampThreads(opts.Threads, fileLen, stats.MaxRecordSize)
	candidates := csvresync.PlanSegments(fileLen, opts.Threads)

	oracle := csvresync.NewOracle(opener, stats, opts)
	spans, err := csvresync.ResolveSpans(oracle, fileLen, candidates, logger)
	if err != nil {
		return 0, err
	}

	return csvresync.RunCount(context.Background(), opener, opts, spans, logger)
}

// clampThreads caps the thread count at file_len / max_record_size, so a
// small file with a generous thread count doesn't produce more candidates
// than it has records to hold boundaries for.
func clampThreads(threads int, fileLen, maxRecordSize int64) int {
	if maxRecordSize <= 0 {
		return 1
	}
	if bound := int(fileLen / maxRecordSize); bound < threads {
		if bound < 1 {
			bound = 1
		}
		return bound
	}
	return threads
}

// serialCount is the sequential fallback: a single span covering the
// whole file, parsed by one worker with no oracle calls at all.
func serialCount(opener csvresync.Opener, opts csvresync.Options) (int64, error) {
	spans := []csvresync.Span{{Index: 0, Start: 0, End: 0, EndOfFile: true}}
	return csvresync.RunCount(context.Background(), opener, opts, spans, nil)
}

// fileOpener returns an Opener that opens path fresh and seeks to offset
// for every call, so no reader state is ever shared across workers.
func fileOpener(path string) csvresync.Opener {
	return func(offset int64) (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		if offset > 0 {
			if _, err := f.Seek(offset, 0); err != nil {
				f.Close()
				return nil, err
			}
		}
		return f, nil
	}
}
