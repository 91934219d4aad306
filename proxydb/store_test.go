package proxydb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Insert(&Proxy{ID: "p1", Address: "10.0.0.1:8080", TCP: true, HTTP: true, Datacenter: true, Country: "DE", City: "Berlin"}))
	require.NoError(t, s.Insert(&Proxy{ID: "p2", Address: "10.0.0.2:8080", TCP: true, HTTP: true, Residential: true, Country: "FR", City: "Paris"}))
	require.NoError(t, s.Insert(&Proxy{ID: "p3", Address: "10.0.0.3:8080", UDP: true, SOCKS5: true, Mobile: true, Country: "*", City: "*"}))
	return s
}

func TestStoreInsertRejectsDuplicateID(t *testing.T) {
	s := seedStore(t)
	err := s.Insert(&Proxy{ID: "p1", Address: "10.0.0.9:8080", TCP: true, HTTP: true, Datacenter: true})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestQueryByIDValidatesAgainstFilterAndPredicate(t *testing.T) {
	s := seedStore(t)

	p, err := s.Query(TransportTCP, ProxyFilter{ID: "p1", Country: []string{"DE"}}, nil)
	require.NoError(t, err)
	require.Equal(t, "p1", p.ID)

	_, err = s.Query(TransportTCP, ProxyFilter{ID: "p1", Country: []string{"FR"}}, nil)
	require.ErrorIs(t, err, ErrMismatch)

	_, err = s.Query(TransportTCP, ProxyFilter{ID: "missing"}, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestQueryByIndexRespectsTransportAndCountry(t *testing.T) {
	s := seedStore(t)

	p, err := s.Query(TransportTCP, ProxyFilter{Country: []string{"DE"}}, nil)
	require.NoError(t, err)
	require.Equal(t, "p1", p.ID)

	p, err = s.Query(TransportUDP, ProxyFilter{}, nil)
	require.NoError(t, err)
	require.Equal(t, "p3", p.ID)
}

func TestQueryWildcardProxyMatchesAnyIndexedCandidate(t *testing.T) {
	s := seedStore(t)
	p, err := s.Query(TransportUDP, ProxyFilter{Country: []string{"JP"}}, nil)
	require.NoError(t, err)
	require.Equal(t, "p3", p.ID)
}

func TestQueryPredicatePostFiltersCandidates(t *testing.T) {
	s := seedStore(t)
	_, err := s.Query(TransportTCP, ProxyFilter{}, func(p *Proxy) bool { return p.ID == "nonexistent" })
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreInsertRejectsEmptyID(t *testing.T) {
	s := NewStore()
	err := s.Insert(&Proxy{Address: "10.0.0.1:8080", TCP: true, HTTP: true, Datacenter: true})
	require.Error(t, err)
	require.Equal(t, 0, s.Len())
}
