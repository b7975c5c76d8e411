// Package tm provides shared type definitions for the tmatch translation
// memory engine.
//
// This package defines the domain types passed between the match backends,
// the aggregation engine, and host applications: queries, candidate matches,
// and the display sink contract.
//
// # Core Types
//
// Query describes one lookup against the active backend set:
//
//	q := tm.Query{
//	    Source:     "Open file",
//	    SourceLang: "en",
//	    TargetLang: "fr",
//	}
//
// Candidate is a single suggested translation. Quality is nil when the
// producing backend did not score the match; the engine scores such
// candidates before ranking:
//
//	c := tm.Candidate{
//	    Source:  "Open a file",
//	    Target:  "Ouvrir un fichier",
//	    Quality: nil,
//	    Origin:  "opentran",
//	}
//
// # Display Sink
//
// Hosts receive ranked matches through the Sink interface. Each delivery
// replaces the previously displayed list; stale deliveries for superseded
// queries are suppressed by the engine and never reach the sink.
package tm
