package splitter

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/ktrn/tilesplit/gltfdoc"
	"github.com/ktrn/tilesplit/stats"
)

const (
	defaultWindowSize            = 100
	defaultShortCircuitThreshold = 400
)

// ChunkerOption configures a Chunker, following the functional-options
// idiom (WithX(...) Option, consumed by NewChunker).
type ChunkerOption func(*Chunker)

// WithWindowSize sets how many root node slots each output tile covers.
// Defaults to 100.
func WithWindowSize(n int) ChunkerOption {
	return func(c *Chunker) { c.windowSize = n }
}

// WithShortCircuitThreshold sets the node count at or under which the
// source document is copied unchanged instead of being split. Defaults to
// 400. Nothing about this number is format-inherent — it is a batching
// knob, so unlike the source it is configurable rather than hard-coded.
func WithShortCircuitThreshold(n int) ChunkerOption {
	return func(c *Chunker) { c.shortCircuitThreshold = n }
}

// WithParallel enables concurrent window construction across workers
// goroutines via a bounded worker pool. workers <= 1 runs windows
// serially (the default).
func WithParallel(workers int) ChunkerOption {
	return func(c *Chunker) { c.parallelWorkers = workers }
}

// Chunker drives the node-windowed split of a source GLB into a sequence
// of independently-loadable tile GLBs. Grounded on split_model_by_nodes.
type Chunker struct {
	windowSize            int
	shortCircuitThreshold int
	parallelWorkers       int
}

// NewChunker creates a Chunker with the given options applied over the
// defaults (window size 100, short-circuit threshold 400, serial
// execution).
func NewChunker(options ...ChunkerOption) *Chunker {
	c := &Chunker{
		windowSize:            defaultWindowSize,
		shortCircuitThreshold: defaultShortCircuitThreshold,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Chunk loads inputPath and writes one or more tile GLBs alongside
// outputBase (outputBase + "_" + n + ".glb"), returning the paths written.
func (c *Chunker) Chunk(inputPath, outputBase string) ([]string, error) {
	doc, err := gltfdoc.Load(inputPath)
	if err != nil {
		return nil, fmt.Errorf("splitter: load %s: %w", inputPath, err)
	}
	return c.ChunkDocument(doc, outputBase)
}

// ChunkDocument splits an already-loaded document. Exposed separately from
// Chunk so ifcbuild-produced documents can be split without a round trip
// through disk.
func (c *Chunker) ChunkDocument(doc *gltfdoc.Document, outputBase string) ([]string, error) {
	totalNodes := len(doc.Nodes)

	if totalNodes <= c.shortCircuitThreshold {
		path := tilePath(outputBase, 1)
		if err := doc.Save(path); err != nil {
			return nil, fmt.Errorf("splitter: save short-circuit tile: %w", err)
		}
		return []string{path}, nil
	}

	windowSize := c.windowSize
	if windowSize <= 0 {
		windowSize = defaultWindowSize
	}
	totalWindows := (totalNodes + windowSize - 1) / windowSize

	progress := stats.NewProgress("chunk", totalWindows)
	defer progress.Done()

	results := make([]string, totalWindows)
	errs := make([]error, totalWindows)
	var progressMu sync.Mutex

	buildWindow := func(windowIdx int) {
		start := windowIdx * windowSize
		end := min(start+windowSize, totalNodes)

		path, built, err := c.buildWindow(doc, start, end, outputBase, windowIdx+1)
		if err != nil {
			errs[windowIdx] = fmt.Errorf("splitter: window %d: %w", windowIdx+1, err)
			return
		}
		if built {
			results[windowIdx] = path
		}
		progressMu.Lock()
		progress.Tick()
		progressMu.Unlock()
	}

	if c.parallelWorkers > 1 {
		c.buildWindowsParallel(totalWindows, buildWindow)
	} else {
		for i := 0; i < totalWindows; i++ {
			buildWindow(i)
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, totalWindows)
	for _, path := range results {
		if path != "" {
			out = append(out, path)
		}
	}
	return out, nil
}

// buildWindowsParallel fans window construction out across a bounded
// worker pool. Windows only read the shared source document and write
// independent output, so they have no data dependency on each other.
// pool.Wait() idles workers rather than draining a specific batch of
// submitted tasks, so a plain WaitGroup gates this call's completion
// instead — the same pattern the engine/scene package this is grounded on
// uses for its parallel per-frame prepare phase.
func (c *Chunker) buildWindowsParallel(totalWindows int, buildWindow func(int)) {
	pool := worker.NewDynamicWorkerPool(c.parallelWorkers, totalWindows, 30*time.Second)

	var wg sync.WaitGroup
	for i := 0; i < totalWindows; i++ {
		wg.Add(1)
		windowIdx := i
		pool.SubmitTask(worker.Task{
			ID: windowIdx,
			Do: func() (any, error) {
				defer wg.Done()
				buildWindow(windowIdx)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// buildWindow runs the collect -> reindex -> repack pipeline for one
// window of node indices [start, end), returning the path written and
// whether anything was actually written (nothing is written when the
// window's collected nodes reference no accessor at all).
func (c *Chunker) buildWindow(doc *gltfdoc.Document, start, end int, outputBase string, fileNumber int) (string, bool, error) {
	info := newCollectedInfo()
	collector := NewCollector(doc)

	for nodeIdx := start; nodeIdx < end; nodeIdx++ {
		collector.Collect(info, nodeIdx, c.effectiveWindowSize())
		collector.CollectAnimations(info, nodeIdx)
	}
	collector.CollectSceneMembership(info)

	if len(info.Accessors) == 0 {
		return "", false, nil
	}

	reindexer := NewReindexer(doc)
	newDoc := reindexer.Reindex(info)

	repacker := NewRepacker(doc.Blob)
	repacker.Repack(newDoc)

	path := tilePath(outputBase, fileNumber)
	if err := newDoc.Save(path); err != nil {
		return "", false, err
	}
	return path, true, nil
}

func (c *Chunker) effectiveWindowSize() int {
	if c.windowSize <= 0 {
		return defaultWindowSize
	}
	return c.windowSize
}

func tilePath(outputBase string, n int) string {
	dir := filepath.Dir(outputBase)
	base := filepath.Base(outputBase)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, fmt.Sprintf("%s_%d.glb", base, n))
}
