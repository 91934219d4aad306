package proxydb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCSVRowFullRow(t *testing.T) {
	row := `p1,1,0,1,1,0,0,1,0,0,203.0.113.5:8080,pool-a,EU,DE,BE,Berlin,carrierX,12345`
	proxies, errs := ParseCSV(strings.NewReader(row))
	require.Empty(t, errs)
	require.Len(t, proxies, 1)

	p := proxies[0]
	require.Equal(t, "p1", p.ID)
	require.Equal(t, "203.0.113.5:8080", p.Address)
	require.True(t, p.TCP)
	require.False(t, p.UDP)
	require.True(t, p.HTTP)
	require.True(t, p.HTTPS)
	require.True(t, p.Datacenter)
	require.Equal(t, "Berlin", p.City)
	require.Equal(t, "12345", p.ASN)
}

func TestParseCSVRowAcceptsAlternateBooleanLiterals(t *testing.T) {
	row := `p2,true,false,null,nil,,0,1,0,0,203.0.113.6:8080,,,,,,,`
	proxies, errs := ParseCSV(strings.NewReader(row))
	require.Empty(t, errs)
	require.Len(t, proxies, 1)
	require.True(t, proxies[0].TCP)
	require.False(t, proxies[0].UDP)
}

func TestParseCSVRowStripsQuotedFields(t *testing.T) {
	row := `"p3",1,0,1,0,0,0,1,0,0,"203.0.113.7:8080",,,,,,,`
	proxies, errs := ParseCSV(strings.NewReader(row))
	require.Empty(t, errs)
	require.Equal(t, "p3", proxies[0].ID)
	require.Equal(t, "203.0.113.7:8080", proxies[0].Address)
}

func TestParseCSVRowRejectsMissingIDOrAddress(t *testing.T) {
	row := `,1,0,1,0,0,0,1,0,0,,,,,,,,`
	_, errs := ParseCSV(strings.NewReader(row))
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], ErrMissingIDOrAddress)
}

func TestParseCSVRowRejectsUnrecognizedBoolean(t *testing.T) {
	row := `p4,yes,0,1,0,0,0,1,0,0,203.0.113.8:8080,,,,,,,`
	_, errs := ParseCSV(strings.NewReader(row))
	require.Len(t, errs, 1)
}

func TestParseCSVSkipsBadRowsAndKeepsGoodOnes(t *testing.T) {
	input := strings.Join([]string{
		`p1,1,0,1,0,0,0,1,0,0,203.0.113.5:8080,,,,,,,`,
		`,1,0,1,0,0,0,1,0,0,,,,,,,,`,
		`p2,1,0,1,0,0,0,1,0,0,203.0.113.6:8080,,,,,,,`,
	}, "\n")
	proxies, errs := ParseCSV(strings.NewReader(input))
	require.Len(t, proxies, 2)
	require.Len(t, errs, 1)
}
