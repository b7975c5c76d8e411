package match

import (
	"fmt"
	"log"

	"github.com/localizers/tmatch/internal/config"
	"github.com/localizers/tmatch/internal/tmstore"
)

// BuildSources constructs the enabled backend set from configuration.
// Each backend is a statically known variant; there is no runtime plugin
// discovery. A backend that fails to construct is skipped with a log line
// rather than failing the whole set.
func BuildSources(cfg config.Config, store *tmstore.Store) []Source {
	var sources []Source

	if cfg.Local.Enabled {
		sources = append(sources, NewLocalSource(
			store,
			cfg.MinSimilarity,
			cfg.Local.MaxCandidates,
			cfg.Local.PrefilterLimit,
		))
	}

	if cfg.Remote.Enabled {
		sources = append(sources, NewRemoteSource(cfg.Remote.Host, cfg.Remote.Port))
	}

	if cfg.OpenTran.Enabled {
		src, err := NewOpenTranSource(cfg.OpenTran.URL, cfg.MinSimilarity, cfg.OpenTran.MaxCandidates)
		if err != nil {
			log.Printf("opentran: backend unavailable: %v", err)
		} else {
			sources = append(sources, src)
		}
	}

	return sources
}

// CloseSources closes every backend, collecting the first error.
func CloseSources(sources []Source) error {
	var firstErr error
	for _, s := range sources {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %s: %w", s.Name(), err)
		}
	}
	return firstErr
}
