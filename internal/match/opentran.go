package match

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/kolo/xmlrpc"

	"github.com/localizers/tmatch/internal/scorer"
	"github.com/localizers/tmatch/pkg/tm"
)

// OpenTranSource queries the Open-Tran public translation memory
// aggregator over XML-RPC. Supported language codes are negotiated lazily
// on first use: each code is tried against the service's "supported"
// method, falling back to progressively simpler variants ("pt_BR" ->
// "pt"), and the backend self-disables for the session once all variants
// are exhausted.
//
// Open-Tran returns many loose matches, so suggestions are scored against
// the query here and entries below the similarity threshold are dropped
// before the engine ever sees them. Cross-backend ranking still happens in
// the aggregator.
type OpenTranSource struct {
	client        *xmlrpc.Client
	minSimilarity int
	maxCandidates int

	mu         sync.Mutex
	sourceLang string // negotiated, "" until resolved
	targetLang string
	disabled   bool
}

// openTranProject is one project entry inside a suggestion
type openTranProject struct {
	Name       string `xmlrpc:"name"`
	Version    string `xmlrpc:"version"`
	Flags      int    `xmlrpc:"flags"`
	OrigPhrase string `xmlrpc:"orig_phrase"`
	Path       string `xmlrpc:"path"`
}

// openTranSuggestion is the wire representation of one suggestion
type openTranSuggestion struct {
	Text     string            `xmlrpc:"text"`
	Value    int               `xmlrpc:"value"`
	Count    int               `xmlrpc:"count"`
	Projects []openTranProject `xmlrpc:"projects"`
}

// NewOpenTranSource creates a client for the aggregator at url.
func NewOpenTranSource(url string, minSimilarity, maxCandidates int) (*OpenTranSource, error) {
	client, err := xmlrpc.NewClient(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create XML-RPC client: %w", err)
	}

	if minSimilarity <= 0 {
		minSimilarity = 75
	}
	if maxCandidates <= 0 {
		maxCandidates = 3
	}

	return &OpenTranSource{
		client:        client,
		minSimilarity: minSimilarity,
		maxCandidates: maxCandidates,
	}, nil
}

func (o *OpenTranSource) Query(ctx context.Context, q tm.Query) ([]tm.Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	srcLang, tgtLang, err := o.negotiate(ctx, q.SourceLang, q.TargetLang)
	if err != nil {
		return nil, err
	}

	var suggestions []openTranSuggestion
	err = o.call(ctx, "suggest2", []interface{}{q.Source, srcLang, tgtLang}, &suggestions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	candidates := make([]tm.Candidate, 0, len(suggestions))
	for _, s := range suggestions {
		c, ok := o.formatSuggestion(q.Source, s)
		if !ok {
			continue
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return *candidates[i].Quality > *candidates[j].Quality
	})
	if len(candidates) > o.maxCandidates {
		candidates = candidates[:o.maxCandidates]
	}

	return candidates, nil
}

// formatSuggestion converts one Open-Tran suggestion into a scored
// candidate, reporting ok=false for entries that are fuzzy-only,
// malformed, or below the similarity threshold.
func (o *OpenTranSource) formatSuggestion(queryText string, s openTranSuggestion) (tm.Candidate, bool) {
	if s.Text == "" || len(s.Projects) == 0 {
		return tm.Candidate{}, false
	}

	// Keep only suggestions some project marks as non-fuzzy
	exact := false
	for _, p := range s.Projects {
		if p.Flags == 0 {
			exact = true
			break
		}
	}
	if !exact {
		return tm.Candidate{}, false
	}

	source := s.Projects[0].OrigPhrase
	if source == "" {
		return tm.Candidate{}, false
	}

	quality := scorer.Score(queryText, source)
	if quality < o.minSimilarity {
		return tm.Candidate{}, false
	}

	return tm.Candidate{
		Source:  source,
		Target:  s.Text,
		Quality: tm.QualityOf(quality),
		Origin:  SourceOpenTran,
	}, true
}

// negotiate resolves the supported variants of the requested language
// pair, caching the result for the session.
func (o *OpenTranSource) negotiate(ctx context.Context, srcLang, tgtLang string) (string, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.disabled {
		return "", "", ErrBackendDisabled
	}
	if o.sourceLang != "" && o.targetLang != "" {
		return o.sourceLang, o.targetLang, nil
	}

	src, err := o.negotiateLang(ctx, srcLang)
	if err != nil {
		o.disabled = true
		return "", "", fmt.Errorf("%w: source %s: %v", ErrLangUnsupported, srcLang, err)
	}
	tgt, err := o.negotiateLang(ctx, tgtLang)
	if err != nil {
		o.disabled = true
		return "", "", fmt.Errorf("%w: target %s: %v", ErrLangUnsupported, tgtLang, err)
	}

	o.sourceLang = src
	o.targetLang = tgt
	return src, tgt, nil
}

// negotiateLang walks from the given code to progressively simpler
// variants until the service confirms support.
func (o *OpenTranSource) negotiateLang(ctx context.Context, lang string) (string, error) {
	for code := lang; code != ""; code = SimplerCode(code) {
		var supported bool
		if err := o.call(ctx, "supported", []interface{}{code}, &supported); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		if supported {
			return code, nil
		}
		log.Printf("opentran: language %s not supported, trying simpler variant", code)
	}
	return "", fmt.Errorf("no supported variant of %q", lang)
}

// call runs an XML-RPC method, honoring context cancellation. The
// underlying client has no context support, so cancellation abandons the
// in-flight call and lets it finish in the background.
func (o *OpenTranSource) call(ctx context.Context, method string, args []interface{}, reply interface{}) error {
	done := make(chan error, 1)
	go func() {
		done <- o.client.Call(method, args, reply)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disabled reports whether language negotiation has shut the backend down
// for this session.
func (o *OpenTranSource) Disabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disabled
}

func (o *OpenTranSource) Name() string {
	return SourceOpenTran
}

func (o *OpenTranSource) Close() error {
	return o.client.Close()
}
