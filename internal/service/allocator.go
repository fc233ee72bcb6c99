package service

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/phuslu/log"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/metrics"
)

// MaxAllocationAttempts bounds the collision-retry loop of UniqueIDAllocator.
const MaxAllocationAttempts = 10

// UniqueIDChecker reports whether a unique_id is already taken.
type UniqueIDChecker interface {
	UniqueIDExists(ctx context.Context, uniqueID string) (bool, error)
}

// UniqueIDAllocator produces 21-character URL-safe ids that no portfolio currently uses.
// The check-then-insert is optimistic: two concurrent creates can still pick the same free id.
type UniqueIDAllocator struct {
	checker  UniqueIDChecker
	generate func() (string, error)
	metrics  *metrics.Metrics
}

// NewUniqueIDAllocator creates an allocator backed by nanoid.
func NewUniqueIDAllocator(checker UniqueIDChecker, m *metrics.Metrics) *UniqueIDAllocator {
	return &UniqueIDAllocator{
		checker:  checker,
		generate: func() (string, error) { return gonanoid.New() },
		metrics:  m,
	}
}

// WithGenerator replaces the id source. Intended for tests.
func (a *UniqueIDAllocator) WithGenerator(generate func() (string, error)) *UniqueIDAllocator {
	a.generate = generate
	return a
}

// Allocate returns a fresh unique_id, trying at most MaxAllocationAttempts candidates.
// Returns apperrors.ErrAllocationExhausted when every candidate was taken.
func (a *UniqueIDAllocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= MaxAllocationAttempts; attempt++ {
		candidate, err := a.generate()
		if err != nil {
			return "", fmt.Errorf("failed to generate unique_id: %w", err)
		}

		taken, err := a.checker.UniqueIDExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		a.metrics.ObserveAllocation(taken)
		if !taken {
			return candidate, nil
		}

		log.Warn().Int("attempt", attempt).Msg("unique_id collision, retrying")
	}

	return "", apperrors.ErrAllocationExhausted
}
