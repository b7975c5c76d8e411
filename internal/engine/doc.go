// Package engine implements the translation memory suggestion pipeline.
//
// The engine sits between a host editor and a set of match backends. A
// navigation event enters through OnQuery, waits out a debounce window so
// bursts of cursor movement coalesce into one lookup, then runs:
//
//	cache check -> concurrent backend fan-out -> aggregation -> display
//
// Backends complete independently; after each completion the engine
// re-aggregates the full accumulated candidate set and redisplays, so the
// suggestion list fills in as slower backends answer. Results for a
// superseded query are discarded on arrival and can never overwrite a
// newer query's display.
//
// The query cache is keyed by exact source text and scoped to the open
// document: loading or closing a document purges it wholesale. A cached
// query is never re-queried against the backends until then.
//
// # Usage
//
//	eng, err := engine.New(cfg, sink)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	if err := eng.OnDocumentLoaded("fr.po"); err != nil {
//	    log.Fatal(err)
//	}
//	eng.OnQuery("Open file", "en", "fr")
package engine
