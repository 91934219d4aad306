package proxydb

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/caddyserver/wireframe/internal/nonempty"
)

// Predicate is an additional, caller-supplied acceptance test run after
// filter/index matching — e.g. "has not failed in the last minute".
type Predicate func(*Proxy) bool

func acceptAll(*Proxy) bool { return true }

// Store is an in-memory, append-only proxy table keyed by id, with
// auxiliary indexes over the attributes ProxyFilter can query by. Safe
// for concurrent use.
type Store struct {
	mu   sync.RWMutex
	rows map[string]*Proxy

	byPoolID    map[string][]string
	byContinent map[string][]string
	byCountry   map[string][]string
	byState     map[string][]string
	byCity      map[string][]string
	byCarrier   map[string][]string
	byASN       map[string][]string
}

// NewStore returns an empty proxy store.
func NewStore() *Store {
	return &Store{
		rows:        make(map[string]*Proxy),
		byPoolID:    make(map[string][]string),
		byContinent: make(map[string][]string),
		byCountry:   make(map[string][]string),
		byState:     make(map[string][]string),
		byCity:      make(map[string][]string),
		byCarrier:   make(map[string][]string),
		byASN:       make(map[string][]string),
	}
}

// ErrDuplicateID is returned by Insert when p.ID already exists.
var ErrDuplicateID = &duplicateIDError{}

type duplicateIDError struct{}

func (*duplicateIDError) Error() string { return "proxydb: duplicate proxy id" }

// ErrInvalidProxy is returned by Insert when p fails Valid.
var ErrInvalidProxy = fmt.Errorf("proxydb: invalid proxy")

// Insert adds p to the store, indexing it by every attribute Query can
// search on. p.ID is required to be non-empty, per the NonEmptyStr
// contract spec.md places on it; empty ids are rejected rather than
// silently indexed. Returns ErrInvalidProxy if p fails Valid, and
// ErrDuplicateID if p.ID is already present, preserving the uniqueness
// invariant.
func (s *Store) Insert(p *Proxy) error {
	if _, err := nonempty.NewStr(p.ID); err != nil {
		return fmt.Errorf("proxydb: %w", err)
	}
	if !p.Valid() {
		return ErrInvalidProxy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[p.ID]; exists {
		return ErrDuplicateID
	}
	s.rows[p.ID] = p
	index(s.byPoolID, p.PoolID, p.ID)
	index(s.byContinent, p.Continent, p.ID)
	index(s.byCountry, p.Country, p.ID)
	index(s.byState, p.State, p.ID)
	index(s.byCity, p.City, p.ID)
	index(s.byCarrier, p.Carrier, p.ID)
	index(s.byASN, p.ASN, p.ID)
	return nil
}

func index(idx map[string][]string, key, id string) {
	if key == "" {
		return
	}
	idx[key] = append(idx[key], id)
}

// Len returns the number of rows in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Query resolves a filter against a transport requirement and a
// predicate, per the query algorithm in the component design: an id
// lookup short-circuits straight to validation; otherwise candidates
// are gathered from the attribute indexes (falling back to a full scan
// when the filter names no indexed attribute), the transport and
// remaining filter fields are checked, and the predicate is applied as
// a post-filter. Ties are broken by uniform random choice among
// matches, mirroring the "any result" contract.
func (s *Store) Query(transport Transport, filter ProxyFilter, pred Predicate) (*Proxy, error) {
	if pred == nil {
		pred = acceptAll
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter.ID != "" {
		p, ok := s.rows[filter.ID]
		if !ok {
			return nil, ErrNotFound
		}
		if !p.supportsTransport(transport) || !filter.Matches(p) || !pred(p) {
			return nil, ErrMismatch
		}
		return p, nil
	}

	candidates := s.candidateIDs(filter)

	var matches []*Proxy
	for _, id := range candidates {
		p := s.rows[id]
		if p == nil || !p.supportsTransport(transport) || !filter.Matches(p) || !pred(p) {
			continue
		}
		matches = append(matches, p)
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return matches[rand.Intn(len(matches))], nil
}

// candidateIDs intersects index hits for every indexed filter field
// present on filter, or scans every row if none are set. Each indexed
// field is OR'd internally (any candidate string for that field) per
// the "OR within an attribute" rule, then the field-level result sets
// are ANDed together.
func (s *Store) candidateIDs(filter ProxyFilter) []string {
	sets := []map[string]struct{}{
		orSet(s.byPoolID, filter.PoolID),
		orSet(s.byContinent, filter.Continent),
		orSet(s.byCountry, filter.Country),
		orSet(s.byState, filter.State),
		orSet(s.byCity, filter.City),
		orSet(s.byCarrier, filter.Carrier),
		orSet(s.byASN, filter.ASN),
	}

	var result map[string]struct{}
	for _, set := range sets {
		if set == nil {
			continue
		}
		if result == nil {
			result = set
			continue
		}
		result = intersect(result, set)
	}
	if result == nil {
		out := make([]string, 0, len(s.rows))
		for id := range s.rows {
			out = append(out, id)
		}
		return out
	}
	out := make([]string, 0, len(result))
	for id := range result {
		out = append(out, id)
	}
	return out
}

// orSet returns nil if values is empty (no constraint), otherwise the
// union of index hits across values, including the wildcard index.
func orSet(idx map[string][]string, values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := map[string]struct{}{}
	for _, v := range values {
		for _, id := range idx[v] {
			set[id] = struct{}{}
		}
	}
	for _, id := range idx[Wildcard] {
		set[id] = struct{}{}
	}
	return set
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for id := range small {
		if _, ok := big[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}
