// Package querysource supplies randomized query content for worker tasks.
// Pools are read-only after load and safe for concurrent selection.
package querysource

import (
	"errors"
	"math/rand"
	"sync"
)

// ErrEmptyPool is returned when a value is requested from a pool that was
// never populated.
var ErrEmptyPool = errors.New("query pool is empty")

// Source selects uniformly-random entries from pre-loaded pools of queries,
// filter queries and facet fields.
type Source struct {
	queries     []string
	filters     []string
	facetFields []string

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a Source over the given pools. Any pool may be empty; the
// corresponding Next call then fails with ErrEmptyPool.
func New(queries, filters, facetFields []string, seed int64) *Source {
	return &Source{
		queries:     append([]string(nil), queries...),
		filters:     append([]string(nil), filters...),
		facetFields: append([]string(nil), facetFields...),
		rnd:         rand.New(rand.NewSource(seed)),
	}
}

// NextQuery returns a random query from the pool.
func (s *Source) NextQuery() (string, error) {
	return s.pick(s.queries)
}

// NextFilterQuery returns a random filter query from the pool.
func (s *Source) NextFilterQuery() (string, error) {
	return s.pick(s.filters)
}

// NextFacetField returns a random facet field from the pool.
func (s *Source) NextFacetField() (string, error) {
	return s.pick(s.facetFields)
}

// QueryCount returns the number of loaded queries.
func (s *Source) QueryCount() int { return len(s.queries) }

// FilterQueryCount returns the number of loaded filter queries.
func (s *Source) FilterQueryCount() int { return len(s.filters) }

// FacetFieldCount returns the number of loaded facet fields.
func (s *Source) FacetFieldCount() int { return len(s.facetFields) }

func (s *Source) pick(pool []string) (string, error) {
	if len(pool) == 0 {
		return "", ErrEmptyPool
	}
	s.mu.Lock()
	index := s.rnd.Intn(len(pool))
	s.mu.Unlock()
	return pool[index], nil
}
