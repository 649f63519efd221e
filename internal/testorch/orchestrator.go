package testorch

import (
	"context"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// Run executes tests against workDir per opts.Mode, honoring the
// depends_on partial order, and returns the aggregate BatchResult.
func Run(ctx context.Context, tests []TestConfig, opts RunOptions) (BatchResult, error) {
	if err := refuseRoot(); err != nil {
		return BatchResult{}, err
	}
	ordered, err := plan(tests)
	if err != nil {
		return BatchResult{}, err
	}

	start := time.Now()
	var results []TestResult
	switch opts.Mode {
	case ModeSequential:
		results = runSequential(ctx, ordered, opts.WorkDir)
	default:
		results = runParallel(ctx, ordered, opts)
	}

	return aggregate(results, time.Since(start)), nil
}

func runSequential(ctx context.Context, ordered []TestConfig, workDir string) []TestResult {
	completed := make(map[string]Status, len(ordered))
	results := make([]TestResult, 0, len(ordered))

	for _, tc := range ordered {
		if ctx.Err() != nil {
			r := TestResult{Name: tc.Name, Status: StatusSkipped, Cause: "cancelled"}
			completed[tc.Name] = r.Status
			results = append(results, r)
			continue
		}
		if !dependenciesSatisfied(tc.DependsOn, completed) {
			r := TestResult{Name: tc.Name, Status: StatusSkipped, Cause: "dependency_not_passed"}
			completed[tc.Name] = r.Status
			results = append(results, r)
			continue
		}
		r := runOne(ctx, tc, workDir)
		completed[tc.Name] = r.Status
		results = append(results, r)
	}
	return results
}

// runParallel schedules ordered in dependency-respecting waves, running
// each wave's eligible tests concurrently bounded by opts.MaxParallelism
// (default min(NumCPU, 8)), grounded on strawgate-gh-aw's
// pool.NewWithResults[...]().WithContext(ctx).WithMaxGoroutines(n) pattern.
func runParallel(ctx context.Context, ordered []TestConfig, opts RunOptions) []TestResult {
	maxGoroutines := opts.MaxParallelism
	if maxGoroutines <= 0 {
		maxGoroutines = runtime.NumCPU()
		if maxGoroutines > 8 {
			maxGoroutines = 8
		}
	}

	byName := make(map[string]TestConfig, len(ordered))
	for _, tc := range ordered {
		byName[tc.Name] = tc
	}
	remaining := append([]TestConfig(nil), ordered...)
	completed := make(map[string]Status, len(ordered))
	resultByName := make(map[string]TestResult, len(ordered))

	for len(remaining) > 0 {
		var toRun []TestConfig
		var stillRemaining []TestConfig

		for _, tc := range remaining {
			switch {
			case ctx.Err() != nil:
				resultByName[tc.Name] = TestResult{Name: tc.Name, Status: StatusSkipped, Cause: "cancelled"}
				completed[tc.Name] = StatusSkipped
			case !allDependenciesTerminal(tc.DependsOn, completed):
				stillRemaining = append(stillRemaining, tc)
			case !dependenciesSatisfied(tc.DependsOn, completed):
				resultByName[tc.Name] = TestResult{Name: tc.Name, Status: StatusSkipped, Cause: "dependency_not_passed"}
				completed[tc.Name] = StatusSkipped
			default:
				toRun = append(toRun, tc)
			}
		}

		if len(toRun) > 0 {
			p := pool.NewWithResults[TestResult]().WithContext(ctx).WithMaxGoroutines(maxGoroutines)
			for _, tc := range toRun {
				tc := tc
				p.Go(func(goCtx context.Context) (TestResult, error) {
					return runOne(goCtx, tc, opts.WorkDir), nil
				})
			}
			wave, _ := p.Wait()
			for _, r := range wave {
				resultByName[r.Name] = r
				completed[r.Name] = r.Status
			}
		}

		if len(stillRemaining) == len(remaining) && len(toRun) == 0 {
			// No progress possible (shouldn't happen: plan() already
			// rejected cycles), mark the rest as errored to avoid looping.
			for _, tc := range stillRemaining {
				resultByName[tc.Name] = TestResult{Name: tc.Name, Status: StatusError, Cause: "scheduling stalled"}
			}
			break
		}
		remaining = stillRemaining
	}

	results := make([]TestResult, 0, len(ordered))
	for _, tc := range ordered {
		results = append(results, resultByName[tc.Name])
	}
	return results
}

func aggregate(results []TestResult, wallClock time.Duration) BatchResult {
	totals := make(Totals)
	allPassed := true
	for _, r := range results {
		totals[r.Status]++
		if r.Status != StatusPassed {
			allPassed = false
		}
	}
	return BatchResult{
		Results:     results,
		AllPassed:   allPassed,
		Totals:      totals,
		WallClockMS: wallClock.Milliseconds(),
	}
}
