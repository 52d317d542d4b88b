// Package session keeps the most recent report of each browser session in
// memory. Nothing is persisted; entries expire after a TTL.
package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/budget-report/internal/report"
)

// Store maps session ids to their latest report bundle.
type Store struct {
	cache *LRUCache[*report.Bundle]
	log   zerolog.Logger
}

// NewStore creates a store holding at most maxEntries sessions for ttl each.
func NewStore(maxEntries int, ttl time.Duration, log zerolog.Logger) *Store {
	return &Store{
		cache: NewLRUCache[*report.Bundle](maxEntries, ttl),
		log:   log,
	}
}

// Put records bundle as the latest report for sessionID.
func (s *Store) Put(sessionID string, bundle *report.Bundle) {
	s.cache.Set(sessionID, bundle)
}

// Latest returns the latest report for sessionID, if it has not expired.
func (s *Store) Latest(sessionID string) (*report.Bundle, bool) {
	return s.cache.Get(sessionID)
}

// Forget drops the session's report.
func (s *Store) Forget(sessionID string) {
	s.cache.Delete(sessionID)
}

// Len returns the number of live sessions, including not yet swept
// expired ones.
func (s *Store) Len() int {
	return s.cache.Size()
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.cache.CleanExpired(); n > 0 {
				s.log.Debug().Int("expired", n).Int("live", s.Len()).Msg("swept expired sessions")
			}
		case <-ctx.Done():
			return
		}
	}
}
