// Package match implements the translation memory backends.
//
// Every backend satisfies the Source interface: given a query it returns
// zero or more candidate translations, each optionally carrying a quality
// score. Three variants exist:
//
//   - LocalSource matches against the translated units of the currently
//     open document, using a full-text prefilter plus edit-distance
//     scoring.
//   - RemoteSource talks to a tmserver-style HTTP/JSON translation memory
//     server and retries transient failures with exponential backoff.
//   - OpenTranSource talks to the Open-Tran public aggregator over
//     XML-RPC, negotiating supported language codes lazily and disabling
//     itself for the session when the pair cannot be supported.
//
// Backends filter their own output (self-match exclusion, per-backend
// caps, similarity thresholds) but never rank across backends; the
// engine's aggregator owns final ordering.
//
// The backend set is built statically from configuration via
// BuildSources; there is no runtime plugin discovery.
package match
