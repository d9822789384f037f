package taxonomy

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/crimson-sun/spfeed/internal/model"
	"github.com/crimson-sun/spfeed/internal/spwire"
)

const defaultCleanupInterval = 10 * time.Minute

// Store keeps decoded term sets in memory for a limited time, keyed by the
// normalized term set id. Safe for concurrent use.
type Store struct {
	cache *gocache.Cache
}

// NewStore creates a Store whose entries expire after ttl. A ttl of zero or
// less keeps entries until they are replaced.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Store{cache: gocache.New(ttl, defaultCleanupInterval)}
}

// Put stores a copy of every set in sets, replacing older snapshots with
// the same id.
func (s *Store) Put(sets model.TermSets) {
	for _, set := range sets.ChildItems {
		s.cache.SetDefault(spwire.NormalizeGuid(set.Id), set.Clone())
	}
}

// Get returns a copy of the stored snapshot of a term set.
func (s *Store) Get(setID string) (model.TermSet, bool) {
	v, ok := s.cache.Get(spwire.NormalizeGuid(setID))
	if !ok {
		return model.TermSet{}, false
	}
	return v.(model.TermSet).Clone(), true
}

// Term returns a copy of a term inside a stored term set.
func (s *Store) Term(setID, termID string) (model.Term, bool) {
	set, ok := s.Get(setID)
	if !ok {
		return model.Term{}, false
	}
	return Find(model.TermSets{ChildItems: []model.TermSet{set}}, termID)
}

// Len returns the number of unexpired term sets.
func (s *Store) Len() int {
	return len(s.cache.Items())
}
