package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localizers/tmatch/pkg/tm"
)

func TestOnQueryDebouncesToLatest(t *testing.T) {
	src := &fakeSource{name: "fake"}
	sink := &captureSink{}
	eng := setupEngine(t, sink, src)

	dispatched := make(chan struct{}, 4)
	eng.SetOnDispatched(func() { dispatched <- struct{}{} })

	// Three rapid events inside one debounce window
	eng.OnQuery("Op", "en", "fr")
	eng.OnQuery("Open fi", "en", "fr")
	eng.OnQuery("Open file", "en", "fr")

	select {
	case <-dispatched:
	case <-time.After(time.Second):
		t.Fatal("debounced query never dispatched")
	}

	// Only the final query reached the backend
	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, "Open file", src.lastCall().Source)
}

func TestOnQuerySeparateWindowsDispatchSeparately(t *testing.T) {
	src := &fakeSource{name: "fake"}
	eng := setupEngine(t, nil, src)

	dispatched := make(chan struct{}, 2)
	eng.SetOnDispatched(func() { dispatched <- struct{}{} })

	eng.OnQuery("Open file", "en", "fr")
	<-dispatched
	eng.OnQuery("Save file", "en", "fr")
	<-dispatched

	assert.Equal(t, 2, src.callCount())
	assert.Equal(t, "Save file", src.lastCall().Source)
}

func TestOnQueryEmptyClearsDisplay(t *testing.T) {
	src := &fakeSource{name: "fake"}
	sink := &captureSink{}
	eng := setupEngine(t, sink, src)

	// A pending query followed by an empty one must not dispatch
	eng.OnQuery("Open file", "en", "fr")
	eng.OnQuery("", "en", "fr")

	assert.GreaterOrEqual(t, sink.clearCount(), 1)

	time.Sleep(time.Duration(eng.cfg.DebounceMs*3) * time.Millisecond)
	assert.Equal(t, 0, src.callCount())
}

func TestOnQueryCacheHitSkipsBackends(t *testing.T) {
	src := &fakeSource{
		name: "fake",
		respond: func(q tm.Query) []tm.Candidate {
			return []tm.Candidate{{Source: "Open a file", Target: "Ouvrir un fichier", Quality: tm.QualityOf(81)}}
		},
	}
	sink := &captureSink{}
	eng := setupEngine(t, sink, src)

	dispatched := make(chan struct{}, 2)
	eng.SetOnDispatched(func() { dispatched <- struct{}{} })

	eng.OnQuery("Open file", "en", "fr")
	<-dispatched
	require.Equal(t, 1, src.callCount())

	eng.OnQuery("Open file", "en", "fr")
	<-dispatched

	// Replayed from the cache, backend untouched
	assert.Equal(t, 1, src.callCount())
	matches := sink.lastMatches()
	require.Len(t, matches, 1)
	assert.Equal(t, "Ouvrir un fichier", matches[0].Target)
}

func TestDispatchAfterCloseDoesNothing(t *testing.T) {
	src := &fakeSource{name: "fake"}
	eng := setupEngine(t, nil, src)

	// Pending query whose timer has not fired yet
	eng.cfg.DebounceMs = 60_000
	eng.OnQuery("Open file", "en", "fr")

	seq := eng.pendingSeq
	require.NoError(t, eng.Close())

	// A timer expiring after shutdown must neither start a goroutine
	// nor touch the closed store
	eng.dispatchPending(seq)
	assert.Equal(t, 0, src.callCount())
}

func TestExpiredTimerCannotClaimNewQuery(t *testing.T) {
	src := &fakeSource{name: "fake"}
	eng := setupEngine(t, nil, src)

	done := make(chan struct{}, 1)
	eng.SetOnDispatched(func() { done <- struct{}{} })

	eng.cfg.DebounceMs = 60_000
	eng.OnQuery("Open file", "en", "fr")

	// A dispatch carrying a sequence older than the pending query is a
	// no-op; the query keeps waiting for its own timer
	eng.dispatchPending(eng.pendingSeq - 1)
	assert.Equal(t, 0, src.callCount())

	eng.Flush()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pending query was lost")
	}
	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, "Open file", src.lastCall().Source)
}

func TestFlushDispatchesImmediately(t *testing.T) {
	src := &fakeSource{name: "fake"}
	eng := setupEngine(t, nil, src)

	done := make(chan struct{}, 1)
	eng.SetOnDispatched(func() { done <- struct{}{} })

	// A long window that Flush must not wait for
	eng.cfg.DebounceMs = 60_000
	eng.OnQuery("Open file", "en", "fr")
	eng.Flush()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Flush did not dispatch the pending query")
	}
	assert.Equal(t, 1, src.callCount())
}
