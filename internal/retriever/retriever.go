// Package retriever holds an in-memory, insertion-ordered collection of
// embedded candidates and ranks them against a query vector by cosine
// similarity.
package retriever

import (
	"sort"
	"sync"

	"github.com/go-logr/logr"

	"selekt/internal/domain"
	"selekt/internal/similarity"
)

// Store is a brute-force ranked retriever. Reads and writes are guarded by
// a RWMutex; the store itself performs no I/O and never caches results.
type Store struct {
	mu         sync.RWMutex
	candidates []domain.Candidate
	log        logr.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger. The store is silent by default.
func WithLogger(log logr.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{log: logr.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a candidate. Duplicate IDs are not deduplicated here; that
// is the indexing collaborator's responsibility.
func (s *Store) Add(c domain.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = append(s.candidates, c)
	if c.Embedding == nil {
		s.log.V(1).Info("indexed candidate without embedding", "id", c.ID)
	}
}

// AddBatch appends candidates in order.
func (s *Store) AddBatch(cs []domain.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = append(s.candidates, cs...)
}

// Search scores every embedded candidate against the query and returns at
// most k results, descending by score. Ties keep insertion order.
// Candidates without an embedding, or whose dimension disagrees with the
// query, are skipped rather than failing the call; a zero-length query is
// rejected with ErrEmptyInput. k <= 0 returns an empty result.
func (s *Store) Search(query []float64, k int) ([]domain.ScoredCandidate, error) {
	if len(query) == 0 {
		return nil, domain.ErrEmptyInput
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.ScoredCandidate, 0, len(s.candidates))
	if k <= 0 {
		return results, nil
	}
	for _, c := range s.candidates {
		if c.Embedding == nil {
			continue
		}
		score, err := similarity.Cosine(query, c.Embedding)
		if err != nil {
			s.log.V(1).Info("skipping candidate with mismatched dimension",
				"id", c.ID, "dimension", len(c.Embedding), "query_dimension", len(query))
			continue
		}
		results = append(results, domain.ScoredCandidate{Candidate: c, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// RemoveByGroup deletes every candidate tagged with the given group and
// returns how many were removed.
func (s *Store) RemoveByGroup(group string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.candidates[:0]
	removed := 0
	for _, c := range s.candidates {
		if c.Group == group {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.candidates = kept
	if removed > 0 {
		s.log.Info("removed candidates", "group", group, "count", removed)
	}
	return removed
}

// Clear empties the store unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = nil
}

// Count returns the number of stored candidates.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates)
}

// CountByGroup returns the number of candidates tagged with the group.
func (s *Store) CountByGroup(group string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.candidates {
		if c.Group == group {
			n++
		}
	}
	return n
}

// Groups returns the sorted, deduplicated group tags currently stored.
func (s *Store) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{}, len(s.candidates))
	var groups []string
	for _, c := range s.candidates {
		if _, ok := seen[c.Group]; ok {
			continue
		}
		seen[c.Group] = struct{}{}
		groups = append(groups, c.Group)
	}
	sort.Strings(groups)
	return groups
}
