package provider

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/amirasaad/tokenx/pkg/cache"
	"github.com/amirasaad/tokenx/pkg/provider"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// CachedEligibility decorates an EligibilityProvider with a TTL cache.
// Concurrent lookups for the same account are deduplicated through
// singleflight so a cold cache does not stampede the scoring service.
// Lookup failures propagate; a stale cache entry is never substituted.
type CachedEligibility struct {
	next   provider.EligibilityProvider
	cache  cache.Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedEligibility wraps next with the given cache and TTL.
func NewCachedEligibility(
	next provider.EligibilityProvider,
	c cache.Cache,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedEligibility {
	return &CachedEligibility{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logger.With("provider", "eligibility"),
	}
}

// Score implements provider.EligibilityProvider.
func (p *CachedEligibility) Score(ctx context.Context, userID uuid.UUID) (float64, error) {
	key := "score:" + userID.String()
	if raw, ok, err := p.cache.Get(ctx, key); err == nil && ok {
		if score, perr := strconv.ParseFloat(raw, 64); perr == nil {
			return score, nil
		}
		// Unparseable entry: drop it and fall through to the lookup.
		_ = p.cache.Delete(ctx, key)
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		score, err := p.next.Score(ctx, userID)
		if err != nil {
			return 0.0, err
		}
		raw := strconv.FormatFloat(score, 'f', -1, 64)
		if cerr := p.cache.Set(ctx, key, raw, p.ttl); cerr != nil {
			p.logger.Warn("failed to cache score", "userID", userID, "error", cerr)
		}
		return score, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}
