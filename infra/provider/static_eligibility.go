// Package provider implements the external-collaborator contracts: the
// eligibility score lookup and its caching decorator.
package provider

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// StaticEligibility serves scores from a fixed table with a default for
// unknown accounts. The production deployment points the engine at the
// scoring pipeline instead; this implementation serves development and tests.
type StaticEligibility struct {
	mu           sync.RWMutex
	scores       map[uuid.UUID]float64
	defaultScore float64
}

// NewStaticEligibility creates a provider returning defaultScore for every
// account not explicitly set.
func NewStaticEligibility(defaultScore float64) *StaticEligibility {
	return &StaticEligibility{
		scores:       make(map[uuid.UUID]float64),
		defaultScore: defaultScore,
	}
}

// SetScore fixes one account's score.
func (p *StaticEligibility) SetScore(userID uuid.UUID, score float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scores[userID] = score
}

// Score implements provider.EligibilityProvider.
func (p *StaticEligibility) Score(ctx context.Context, userID uuid.UUID) (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if score, ok := p.scores[userID]; ok {
		return score, nil
	}
	return p.defaultScore, nil
}
