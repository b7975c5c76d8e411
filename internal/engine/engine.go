package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/localizers/tmatch/internal/config"
	"github.com/localizers/tmatch/internal/document"
	"github.com/localizers/tmatch/internal/match"
	"github.com/localizers/tmatch/internal/tmstore"
	"github.com/localizers/tmatch/pkg/tm"
)

var (
	// ErrNoDocument is returned when an operation needs an open document
	ErrNoDocument = errors.New("no document open")
	// ErrNoPushTarget is returned when no enabled backend accepts uploads
	ErrNoPushTarget = errors.New("no backend accepts uploads")
)

// Engine coordinates the full suggestion pipeline: debounced query
// scheduling, the document-scoped query cache, concurrent backend
// fan-out, aggregation, and delivery to the display sink.
//
// All exported methods are safe for concurrent use. The sink is invoked
// with the engine lock held; implementations must return quickly and must
// not call back into the engine.
type Engine struct {
	cfg     config.Config
	store   *tmstore.Store
	sources []match.Source
	cache   *queryCache
	sink    tm.Sink

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	gen     uint64      // generation of the active query
	activeQ tm.Query    // query owning the current generation
	accum   []tm.Candidate
	doc     *document.Document

	// Debounce state. pendingSeq advances on every OnQuery, so a timer
	// that already fired for an earlier query cannot claim a newer one.
	timer      *time.Timer
	pending    tm.Query
	pendingSeq uint64

	// Optional callback for test synchronization
	onDispatched func()
}

// New creates an engine with the backend set derived from cfg. The sink
// may be nil when only the synchronous Lookup path is used.
func New(cfg config.Config, sink tm.Sink) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := tmstore.New(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create unit store: %w", err)
	}

	return NewWithSources(cfg, sink, store, match.BuildSources(cfg, store)), nil
}

// NewWithSources creates an engine over an explicit store and backend
// set. Used by tests and by hosts that compose their own backends.
func NewWithSources(cfg config.Config, sink tm.Sink, store *tmstore.Store, sources []match.Source) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		cfg:     cfg,
		store:   store,
		sources: sources,
		cache:   newQueryCache(cfg.CacheSize),
		sink:    sink,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close stops the debounce timer, waits for in-flight dispatches, and
// releases the backends and the store.
func (e *Engine) Close() error {
	e.cancel()

	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
	}
	e.mu.Unlock()

	e.wg.Wait()

	err := match.CloseSources(e.sources)
	if cerr := e.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// OnDocumentLoaded replaces the local match index with the units of the
// document at path, invalidates the query cache, and clears any displayed
// matches. In-flight queries against the previous document are
// invalidated and their late results dropped.
func (e *Engine) OnDocumentLoaded(path string) error {
	doc, err := document.Load(path)
	if err != nil {
		return err
	}

	if err := e.store.ReplaceUnits(e.ctx, doc.Units); err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}

	e.mu.Lock()
	e.gen++
	e.doc = doc
	e.accum = nil
	e.cache.Purge()
	if e.sink != nil {
		e.sink.ClearMatches()
	}
	e.mu.Unlock()

	log.Printf("engine: indexed %d units from %s", len(doc.Units), doc.Name())
	return nil
}

// OnDocumentClosed drops the local match index and the query cache.
func (e *Engine) OnDocumentClosed() error {
	if err := e.store.Clear(e.ctx); err != nil {
		return err
	}

	e.mu.Lock()
	e.gen++
	e.doc = nil
	e.accum = nil
	e.cache.Purge()
	if e.sink != nil {
		e.sink.ClearMatches()
	}
	e.mu.Unlock()

	return nil
}

// Document returns the currently open document, or nil.
func (e *Engine) Document() *document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

// Select returns the target text of an accepted candidate for the host to
// write back into the document. The engine never mutates document state
// itself.
func (e *Engine) Select(c tm.Candidate) string {
	return c.Target
}

// Lookup runs one query synchronously: cache check, backend fan-out,
// aggregation. It is the dispatch core of the debounced path and also the
// entry point for one-shot callers (CLI, MCP tools).
func (e *Engine) Lookup(ctx context.Context, q tm.Query) ([]tm.Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	e.fillLangs(&q)

	if cached, ok := e.cache.Get(q.Source); ok {
		return cached, nil
	}

	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.activeQ = q
	e.accum = nil
	e.mu.Unlock()

	return e.fanOut(ctx, gen, q), nil
}

// fanOut queries every backend concurrently, re-aggregating and
// redisplaying after each completion, and returns the final ranked list.
// A backend failure degrades to zero candidates from that backend.
func (e *Engine) fanOut(ctx context.Context, gen uint64, q tm.Query) []tm.Candidate {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.QueryTimeoutMs)*time.Millisecond)
	defer cancel()

	var collectMu sync.Mutex
	var collected []tm.Candidate

	g, ctx := errgroup.WithContext(ctx)
	for _, src := range e.sources {
		g.Go(func() error {
			candidates, err := src.Query(ctx, q)
			if err != nil {
				log.Printf("engine: backend %s: %v", src.Name(), err)
				return nil
			}

			collectMu.Lock()
			collected = append(collected, candidates...)
			collectMu.Unlock()

			e.accept(gen, candidates)
			return nil
		})
	}
	_ = g.Wait()

	collectMu.Lock()
	final := Aggregate(q.Source, collected, e.cfg.MaxResults)
	collectMu.Unlock()

	e.mu.Lock()
	if gen == e.gen {
		e.cache.Add(q.Source, final)
	}
	e.mu.Unlock()

	return final
}

// accept folds one backend's candidates into the active query's
// accumulated set and redisplays the re-ranked list. Late results for a
// superseded generation are discarded before they can touch the display.
func (e *Engine) accept(gen uint64, candidates []tm.Candidate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		return // stale completion
	}

	e.accum = append(e.accum, candidates...)
	if e.sink != nil {
		e.sink.DisplayMatches(Aggregate(e.activeQ.Source, e.accum, e.cfg.MaxResults))
	}
}

// Push uploads the open document's translated units to the first backend
// that accepts uploads, then invalidates the query cache since remote
// answers may change.
func (e *Engine) Push(ctx context.Context) error {
	e.mu.Lock()
	doc := e.doc
	e.mu.Unlock()
	if doc == nil {
		return ErrNoDocument
	}

	stored, err := e.store.ListTranslated(ctx)
	if err != nil {
		return err
	}

	units := make([]match.Unit, 0, len(stored))
	for _, u := range stored {
		units = append(units, match.Unit{
			Source:  u.Source,
			Target:  u.Target,
			Context: u.Context,
		})
	}

	q := tm.Query{Source: "-", SourceLang: e.cfg.SourceLang, TargetLang: e.cfg.TargetLang}
	for _, src := range e.sources {
		pusher, ok := src.(match.Pusher)
		if !ok {
			continue
		}
		if err := pusher.Push(ctx, doc.Name(), q, units); err != nil {
			return err
		}
		e.cache.Purge()
		return nil
	}

	return ErrNoPushTarget
}

// Sources returns the names of the active backends, for status reporting.
func (e *Engine) Sources() []string {
	names := make([]string, 0, len(e.sources))
	for _, s := range e.sources {
		names = append(names, s.Name())
	}
	return names
}

// CachedQueries returns the number of memoized queries, for status
// reporting.
func (e *Engine) CachedQueries() int {
	return e.cache.Len()
}

// fillLangs applies the configured default language pair to queries that
// do not carry their own.
func (e *Engine) fillLangs(q *tm.Query) {
	if q.SourceLang == "" {
		q.SourceLang = e.cfg.SourceLang
	}
	if q.TargetLang == "" {
		q.TargetLang = e.cfg.TargetLang
	}
}
