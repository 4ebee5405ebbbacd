package metrics

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/maikgreubel/sourcetree/pkg/lang"
)

// Aggregator folds per-file scan results into tree-wide summaries. It keeps
// no state between calls; every Aggregate reflects the tree as listed at
// that moment.
type Aggregator struct {
	workers int
}

// NewAggregator creates an Aggregator with the given worker pool width.
// A non-positive width uses the CPU count.
func NewAggregator(workers int) *Aggregator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Aggregator{workers: workers}
}

// fileOutcome carries one worker result to the fold step.
type fileOutcome struct {
	record *FileRecord
	skip   *SkippedFile
}

// Aggregate scans every file under root and folds the results. Per-file
// failures (unreadable, binary content) become skip entries; only a failing
// List call is fatal. Cancellation between files returns the totals folded
// so far with Partial set.
func (a *Aggregator) Aggregate(ctx context.Context, root string, lister Lister) (*TreeMetrics, error) {
	paths, err := lister.List(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}

	result := &TreeMetrics{PerLanguage: make(map[lang.Tag]LanguageSummary)}

	jobs := make(chan string)
	outcomes := make(chan fileOutcome)

	var wg sync.WaitGroup

	for range a.workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for path := range jobs {
				outcomes <- scanOne(ctx, root, path, lister)
			}
		}()
	}

	// Dispatch until done or canceled; cancellation leaves the remaining
	// paths unvisited and marks the result partial.
	go func() {
		defer close(jobs)

		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Single collector: the fold step is serialized here, workers never
	// touch shared totals.
	for outcome := range outcomes {
		fold(result, outcome)
	}

	if ctx.Err() != nil {
		result.Partial = true
	}

	finalize(result)

	return result, nil
}

// scanOne reads, classifies and scans a single file.
func scanOne(ctx context.Context, root, path string, lister Lister) fileOutcome {
	content, err := lister.Read(ctx, root, path)
	if err != nil {
		return fileOutcome{skip: &SkippedFile{Path: path, Reason: fmt.Sprintf("unreadable: %v", err)}}
	}

	if isBinary(content) {
		return fileOutcome{skip: &SkippedFile{Path: path, Reason: "binary or undecodable content"}}
	}

	tag := lang.Classify(path)
	counts := Scan(tag, string(content))

	return fileOutcome{record: &FileRecord{
		Path:       path,
		Language:   tag,
		Size:       int64(len(content)),
		Lines:      counts.Lines,
		Blank:      counts.Blank,
		Comment:    counts.Comment,
		Complexity: counts.Complexity,
	}}
}

// fold adds one outcome to the running totals.
func fold(result *TreeMetrics, outcome fileOutcome) {
	if outcome.skip != nil {
		result.Skipped = append(result.Skipped, *outcome.skip)

		return
	}

	record := *outcome.record
	result.Files = append(result.Files, record)
	result.TotalFiles++
	result.TotalLines += record.Lines

	summary := result.PerLanguage[record.Language]
	summary.Files++
	summary.Lines += record.Lines
	summary.Complexity += record.Complexity
	result.PerLanguage[record.Language] = summary
}

// finalize computes derived values and restores deterministic ordering
// after the concurrent scan.
func finalize(result *TreeMetrics) {
	if result.TotalFiles > 0 {
		result.AverageLines = float64(result.TotalLines) / float64(result.TotalFiles)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	sort.Slice(result.Skipped, func(i, j int) bool {
		return result.Skipped[i].Path < result.Skipped[j].Path
	})
}

// isBinary reports whether content looks undecodable as source text.
func isBinary(content []byte) bool {
	if bytes.IndexByte(content, 0) >= 0 {
		return true
	}

	return !utf8.Valid(content)
}
