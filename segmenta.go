package segmenta

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/segmenta/catalog"
	"github.com/hupe1980/segmenta/cluster"
	"github.com/hupe1980/segmenta/model"
	"github.com/hupe1980/segmenta/rank"
	"github.com/hupe1980/segmenta/resource"
	"github.com/hupe1980/segmenta/source"
)

// Engine is the top-level entry point: it owns the catalog index, the
// relevance scorer and the partitioner, and enforces resource limits across
// them. All methods are safe for concurrent use.
type Engine struct {
	opts    options
	sources []source.Source
	holder  *catalog.Holder
	scorer  *rank.Scorer
	ctrl    *resource.Controller
	closed  atomic.Bool
}

// New builds the catalog from the given sources and returns a ready engine.
func New(ctx context.Context, sources []source.Source, optFns ...Option) (*Engine, error) {
	opts := applyOptions(optFns)

	start := time.Now()
	x, err := catalog.Build(ctx, sources, opts.buildOptions...)

	variables := 0
	if x != nil {
		variables = x.Len()
	}
	opts.metricsCollector.RecordCatalogBuild(variables, time.Since(start), err)
	opts.logger.LogCatalogBuild(ctx, variables, versionOf(x), time.Since(start), err)

	if err != nil {
		return nil, translateError(err)
	}

	e := newEngine(opts, x)
	e.sources = sources
	return e, nil
}

// NewWithIndex returns an engine around a prebuilt catalog index. Rebuild is
// unavailable without sources; use SwapCatalog to install newer indexes.
func NewWithIndex(x *catalog.Index, optFns ...Option) *Engine {
	return newEngine(applyOptions(optFns), x)
}

func newEngine(opts options, x *catalog.Index) *Engine {
	ctrl := opts.resourceController
	if ctrl == nil {
		ctrl = resource.NewController(opts.resourceConfig)
	}
	return &Engine{
		opts:   opts,
		holder: catalog.NewHolder(x),
		scorer: rank.NewScorer(opts.scorerOptions...),
		ctrl:   ctrl,
	}
}

// Search ranks catalog variables against a free-text audience description.
func (e *Engine) Search(ctx context.Context, query string, topK int, optFns ...func(*rank.SearchOptions)) ([]model.Candidate, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	results, err := e.scorer.Search(ctx, e.holder.Load(), query, topK, optFns...)

	e.opts.metricsCollector.RecordSearch(topK, time.Since(start), err)
	e.opts.logger.LogSearch(ctx, query, topK, len(results), err)

	return results, translateError(err)
}

// Refine re-ranks against a prior query merged with additional description
// text, excluding already-selected variable codes. Fresh tokens outweigh
// carried-over ones.
func (e *Engine) Refine(ctx context.Context, priorQuery, extraText string, excludeCodes []string, topK int, optFns ...func(*rank.SearchOptions)) ([]model.Candidate, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	results, err := e.scorer.Refine(ctx, e.holder.Load(), priorQuery, extraText, excludeCodes, topK, optFns...)

	e.opts.metricsCollector.RecordRefine(topK, time.Since(start), err)
	e.opts.logger.LogRefine(ctx, topK, len(excludeCodes), len(results), err)

	return results, translateError(err)
}

// Partition splits a record matrix into size-bounded segments. Runs are
// gated by the resource controller: at most MaxConcurrentRuns in flight, and
// the encoded matrix footprint is reserved against the memory limit.
func (e *Engine) Partition(ctx context.Context, m *model.Matrix, params cluster.Params, optFns ...func(*cluster.Options)) (*model.PartitionResult, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	if err := e.ctrl.AcquireRun(ctx); err != nil {
		return nil, err
	}
	defer e.ctrl.ReleaseRun()

	footprint := matrixFootprint(m)
	if err := e.ctrl.AcquireMemory(ctx, footprint); err != nil {
		return nil, err
	}
	defer e.ctrl.ReleaseMemory(footprint)

	runOpts := append(append([]func(*cluster.Options){}, e.opts.clusterOptions...), optFns...)

	start := time.Now()
	res, err := cluster.Partition(ctx, m, params, runOpts...)

	e.opts.metricsCollector.RecordPartition(params.K, m.Rows(), time.Since(start), err)
	iterations, converged := 0, false
	if res != nil {
		iterations, converged = res.Iterations, res.Converged
	}
	e.opts.logger.LogPartition(ctx, params.K, m.Rows(), iterations, converged, err)

	return res, translateError(err)
}

// Catalog returns the currently installed catalog index.
func (e *Engine) Catalog() *catalog.Index {
	return e.holder.Load()
}

// Stats returns the numeric range of a catalog variable, if recorded.
func (e *Engine) Stats(code string) (*model.NumericStats, bool) {
	x := e.holder.Load()
	if x == nil {
		return nil, false
	}
	return x.Stats(code)
}

// Info returns diagnostics about the installed catalog.
func (e *Engine) Info() catalog.Info {
	x := e.holder.Load()
	if x == nil {
		return catalog.Info{}
	}
	return x.Info()
}

// SwapCatalog atomically installs a new catalog index. In-flight searches
// finish against the index they started with.
func (e *Engine) SwapCatalog(x *catalog.Index) {
	old := e.holder.Swap(x)
	e.opts.logger.LogCatalogSwap(context.Background(), versionOf(old), versionOf(x))
}

// Rebuild re-reads the engine's sources and swaps in the fresh index. The
// installed index stays untouched if the build fails.
func (e *Engine) Rebuild(ctx context.Context) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if len(e.sources) == 0 {
		return ErrCatalogUnavailable
	}

	start := time.Now()
	x, err := catalog.Build(ctx, e.sources, e.opts.buildOptions...)

	variables := 0
	if x != nil {
		variables = x.Len()
	}
	e.opts.metricsCollector.RecordCatalogBuild(variables, time.Since(start), err)
	e.opts.logger.LogCatalogBuild(ctx, variables, versionOf(x), time.Since(start), err)

	if err != nil {
		return translateError(err)
	}

	e.SwapCatalog(x)
	return nil
}

// Watch starts a catalog watcher that rebuilds from the engine's sources
// whenever one of the given paths changes, and swaps the result in. The
// watcher goroutine runs until ctx is cancelled; Close the returned watcher
// to release its file handles.
func (e *Engine) Watch(ctx context.Context, paths []string, optFns ...catalog.WatcherOption) (*catalog.Watcher, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	if len(e.sources) == 0 {
		return nil, ErrCatalogUnavailable
	}

	rebuild := func(ctx context.Context) (*catalog.Index, error) {
		return catalog.Build(ctx, e.sources, e.opts.buildOptions...)
	}
	w, err := catalog.NewWatcher(e.holder, rebuild, paths, optFns...)
	if err != nil {
		return nil, err
	}
	go w.Run(ctx)
	return w, nil
}

// Close marks the engine closed. Subsequent operations return ErrClosed.
// Close is idempotent.
func (e *Engine) Close() error {
	e.closed.Store(true)
	return nil
}

// matrixFootprint estimates the resident bytes of a matrix's encoded form.
func matrixFootprint(m *model.Matrix) int64 {
	var perRow int64
	for i := range m.Columns {
		if m.Columns[i].Kind == model.ColumnNumeric {
			perRow += 8
		} else {
			perRow += 16
		}
	}
	return perRow * int64(m.Rows())
}

func versionOf(x *catalog.Index) uint64 {
	if x == nil {
		return 0
	}
	return x.Version()
}
