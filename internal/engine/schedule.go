package engine

import (
	"time"

	"github.com/localizers/tmatch/pkg/tm"
)

// OnQuery is the debounced entry point for navigation events. Rapid
// successive calls within the debounce window coalesce; only the most
// recent query is dispatched when the timer fires. An empty source text
// is a no-op that clears the displayed matches instead of querying
// backends.
func (e *Engine) OnQuery(source, sourceLang, targetLang string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pendingSeq++

	if source == "" {
		if e.timer != nil {
			e.timer.Stop()
		}
		e.pending = tm.Query{}
		if e.sink != nil {
			e.sink.ClearMatches()
		}
		return
	}

	e.pending = tm.Query{Source: source, SourceLang: sourceLang, TargetLang: targetLang}

	// Restart the debounce window. The timer carries this query's
	// sequence; a timer that already fired for the previous query
	// arrives with a stale sequence and is discarded, so the new query
	// always waits out its full window.
	if e.timer != nil {
		e.timer.Stop()
	}
	seq := e.pendingSeq
	e.timer = time.AfterFunc(time.Duration(e.cfg.DebounceMs)*time.Millisecond, func() {
		e.dispatchPending(seq)
	})
}

// Flush dispatches a pending query immediately without waiting for the
// debounce timer.
func (e *Engine) Flush() {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
	}
	seq := e.pendingSeq
	e.mu.Unlock()

	e.dispatchPending(seq)
}

// SetOnDispatched sets a callback invoked after each completed dispatch
// (for test synchronization).
func (e *Engine) SetOnDispatched(callback func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onDispatched = callback
}

// dispatchPending claims the pending query and drives it through the
// cache/fan-out/display path. A stale sequence (the query was replaced
// after this timer was armed) or a shut-down engine makes it a no-op.
// The WaitGroup increment happens under the lock, so it is ordered
// before Close's Wait: Close cancels the context and takes the lock
// first, and any dispatch that slips in ahead of that is fully
// registered before Wait can observe the counter.
func (e *Engine) dispatchPending(seq uint64) {
	e.mu.Lock()
	if e.ctx.Err() != nil || seq != e.pendingSeq {
		e.mu.Unlock()
		return
	}
	q := e.pending
	e.pending = tm.Query{}
	callback := e.onDispatched
	if q.Source == "" {
		e.mu.Unlock()
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()

		e.fillLangs(&q)

		// Cache hit displays without touching any backend
		if cached, ok := e.cache.Get(q.Source); ok {
			e.mu.Lock()
			e.gen++
			e.activeQ = q
			e.accum = nil
			if e.sink != nil {
				e.sink.DisplayMatches(cached)
			}
			e.mu.Unlock()
			if callback != nil {
				callback()
			}
			return
		}

		e.mu.Lock()
		e.gen++
		gen := e.gen
		e.activeQ = q
		e.accum = nil
		e.mu.Unlock()

		e.fanOut(e.ctx, gen, q)

		if callback != nil {
			callback()
		}
	}()
}
