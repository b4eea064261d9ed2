// Package csvresync implements the resynchronization algorithm behind
// parallel CSV parsing: given an arbitrary byte offset into a CSV file, it
// locates the start of the next genuine record boundary, distinguishing
// boundaries inside quoted fields (where newlines and delimiters are
// literal) from true record terminators.
//
// The typical pipeline is:
//
//	stats, _ := csvresync.ScanSample(header, opts)
//	oracle := csvresync.NewOracle(open, stats, opts)
//	candidates := csvresync.PlanSegments(fileLen, opts.Threads)
//	spans, _ := csvresync.ResolveSpans(oracle, fileLen, candidates, logger)
//	count, _ := csvresync.RunCount(ctx, open, opts, spans, logger)
//
// ScanSample derives a conservative upper bound on record size from the
// leading records of the file. PlanSegments splits the file length evenly
// by thread count into candidate probe offsets. The Oracle resolves each
// candidate into a NextRecord verdict — the core algorithm this package
// exists to implement. ResolveSpans turns verdicts into half-open byte
// ranges, merging any Fail or premature EndOfFile verdict into the
// preceding range. Run and RunCount fan the ranges out to independent
// workers and reduce their partial results.
//
// Scanner, in scanner.go, is a separate, sequential, record-at-a-time
// reader. It is useful for small files or diagnostics but performs a full
// scan, which is exactly what the oracle-driven pipeline above exists to
// avoid.
package csvresync
