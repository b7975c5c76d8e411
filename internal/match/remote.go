package match

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/localizers/tmatch/internal/scorer"
	"github.com/localizers/tmatch/pkg/tm"
)

// RemoteSource queries a tmserver-style translation memory over HTTP.
// Lookups hit GET <base>/<source-lang>/<target-lang>/unit/<text> and
// receive a JSON array of matches. Transient failures are retried with
// exponential backoff.
type RemoteSource struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
}

// remoteMatch is the tmserver wire representation of one match
type remoteMatch struct {
	Source  string   `json:"source"`
	Target  string   `json:"target"`
	Quality *float64 `json:"quality,omitempty"`
	Context string   `json:"context,omitempty"`
}

// NewRemoteSource creates a client for the TM server at host:port.
func NewRemoteSource(host string, port int) *RemoteSource {
	return &RemoteSource{
		baseURL: fmt.Sprintf("http://%s:%d/tmserver", host, port),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: DefaultRetryConfig(),
	}
}

// NewRemoteSourceURL creates a client for an explicit base URL. Used by
// tests and non-default deployments.
func NewRemoteSourceURL(baseURL string) *RemoteSource {
	return &RemoteSource{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry: DefaultRetryConfig(),
	}
}

func (r *RemoteSource) Query(ctx context.Context, q tm.Query) ([]tm.Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	matches, err := retryWithBackoff(ctx, r.retry, func() ([]remoteMatch, error) {
		return r.callUnit(ctx, q)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v", ErrBackendUnavailable, r.retry.MaxRetries, err)
	}

	candidates := make([]tm.Candidate, 0, len(matches))
	for _, m := range matches {
		if m.Source == "" {
			// Malformed entry; drop it without aborting the rest
			continue
		}
		c := tm.Candidate{
			Source:  m.Source,
			Target:  m.Target,
			Context: m.Context,
			Origin:  SourceRemote,
		}
		if m.Quality != nil {
			c.Quality = tm.QualityOf(scorer.Clamp(int(*m.Quality)))
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

func (r *RemoteSource) callUnit(ctx context.Context, q tm.Query) ([]remoteMatch, error) {
	u := fmt.Sprintf("%s/%s/%s/unit/%s",
		r.baseURL,
		url.PathEscape(q.SourceLang),
		url.PathEscape(q.TargetLang),
		url.PathEscape(q.Source),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		// Unknown unit; the server has nothing to suggest
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var matches []remoteMatch
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return matches, nil
}

// Push uploads translated units from the open document to the server's
// store endpoint, so future queries from any client benefit from them.
func (r *RemoteSource) Push(ctx context.Context, name string, q tm.Query, units []Unit) error {
	body, err := json.Marshal(units)
	if err != nil {
		return fmt.Errorf("marshal units: %w", err)
	}

	u := fmt.Sprintf("%s/%s/%s/store/%s",
		r.baseURL,
		url.PathEscape(q.SourceLang),
		url.PathEscape(q.TargetLang),
		url.PathEscape(name),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store upload failed %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

func (r *RemoteSource) Name() string {
	return SourceRemote
}

func (r *RemoteSource) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}
