package di

import (
	"fmt"

	"github.com/panjf2000/ants/v2"

	"github.com/h32109/stock-service/internal/config"
	"github.com/h32109/stock-service/internal/feature/stocks/engine"
)

// SearchEngine bundles the matcher and ranker built from configuration.
type SearchEngine struct {
	Matcher *engine.Matcher
	Ranker  *engine.Ranker
	pool    *ants.Pool
}

// Release frees the worker pool, if any.
func (e *SearchEngine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// NewSearchEngine creates the matcher and ranker. Workers > 0 runs the
// match strategies concurrently on an ants pool of that size.
func NewSearchEngine(cfg config.SearchConfig) (*SearchEngine, error) {
	opts := []engine.MatcherOption{engine.WithLegacyIndustryTag(cfg.LegacyIndustryTag)}

	var pool *ants.Pool
	if cfg.Workers > 0 {
		p, err := ants.NewPool(cfg.Workers)
		if err != nil {
			return nil, fmt.Errorf("create search worker pool: %w", err)
		}
		pool = p
		opts = append(opts, engine.WithPool(pool))
	}

	return &SearchEngine{
		Matcher: engine.NewMatcher(opts...),
		Ranker:  engine.NewRanker(cfg.KindPriority),
		pool:    pool,
	}, nil
}
