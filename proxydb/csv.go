package proxydb

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// csvColumns is the fixed 18-column layout (an optional trailing 19th
// credential column is accepted and ignored) described in the component
// design's CSV ingest rules.
const csvColumns = 18

// ErrMissingIDOrAddress is returned by ParseCSVRow when the id or
// address column is empty.
var ErrMissingIDOrAddress = fmt.Errorf("proxydb: csv row missing id or address")

// ParseCSV reads proxy rows from r, one per line, in the column order
// id, tcp, udp, http, https, socks5, socks5h, datacenter, residential,
// mobile, address, pool_id, continent, country, state, city, carrier,
// asn[, credential]. Rows that fail to parse are skipped with their
// error appended to the returned slice rather than aborting the whole
// ingest, since a single malformed data-center feed line shouldn't sink
// the rest of the file.
func ParseCSV(r io.Reader) ([]*Proxy, []error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var proxies []*Proxy
	var errs []error
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p, err := ParseCSVRow(record)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		proxies = append(proxies, p)
	}
	return proxies, errs
}

// ParseCSVRow converts one already-split CSV record into a Proxy.
func ParseCSVRow(record []string) (*Proxy, error) {
	if len(record) < csvColumns {
		return nil, fmt.Errorf("proxydb: csv row has %d columns, want at least %d", len(record), csvColumns)
	}
	for i, f := range record {
		record[i] = unquoteCSVField(f)
	}

	id := record[0]
	address := record[10]
	if id == "" || address == "" {
		return nil, ErrMissingIDOrAddress
	}

	p := &Proxy{
		ID:      id,
		Address: address,
		PoolID:  record[11],
		Continent: record[12],
		Country: record[13],
		State:   record[14],
		City:    record[15],
		Carrier: record[16],
		ASN:     record[17],
	}

	var err error
	if p.TCP, err = parseCSVBool(record[1]); err != nil {
		return nil, fmt.Errorf("proxydb: tcp: %w", err)
	}
	if p.UDP, err = parseCSVBool(record[2]); err != nil {
		return nil, fmt.Errorf("proxydb: udp: %w", err)
	}
	if p.HTTP, err = parseCSVBool(record[3]); err != nil {
		return nil, fmt.Errorf("proxydb: http: %w", err)
	}
	if p.HTTPS, err = parseCSVBool(record[4]); err != nil {
		return nil, fmt.Errorf("proxydb: https: %w", err)
	}
	if p.SOCKS5, err = parseCSVBool(record[5]); err != nil {
		return nil, fmt.Errorf("proxydb: socks5: %w", err)
	}
	if p.SOCKS5H, err = parseCSVBool(record[6]); err != nil {
		return nil, fmt.Errorf("proxydb: socks5h: %w", err)
	}
	if p.Datacenter, err = parseCSVBool(record[7]); err != nil {
		return nil, fmt.Errorf("proxydb: datacenter: %w", err)
	}
	if p.Residential, err = parseCSVBool(record[8]); err != nil {
		return nil, fmt.Errorf("proxydb: residential: %w", err)
	}
	if p.Mobile, err = parseCSVBool(record[9]); err != nil {
		return nil, fmt.Errorf("proxydb: mobile: %w", err)
	}

	return p, nil
}

func unquoteCSVField(f string) string {
	if len(f) >= 2 && strings.HasPrefix(f, `"`) && strings.HasSuffix(f, `"`) {
		return f[1 : len(f)-1]
	}
	return f
}

func parseCSVBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true":
		return true, nil
	case "0", "false", "null", "nil", "":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized boolean literal %q", v)
	}
}
