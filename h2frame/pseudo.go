package h2frame

import (
	"net/url"
	"strings"

	"github.com/caddyserver/wireframe/internal/sharedstr"
)

// pseudo-header wire names, RFC 7540 §8.1.2.3 / RFC 8441 §4.
const (
	PseudoMethod    = ":method"
	PseudoScheme    = ":scheme"
	PseudoAuthority = ":authority"
	PseudoPath      = ":path"
	PseudoProtocol  = ":protocol"
	PseudoStatus    = ":status"
)

var internedSchemes = map[string]sharedstr.Str{
	"http":  sharedstr.Intern("http"),
	"https": sharedstr.Intern("https"),
}

func internScheme(s string) sharedstr.Str {
	if v, ok := internedSchemes[s]; ok {
		return v
	}
	return sharedstr.New(s)
}

// Pseudo holds the decoded pseudo-header set for one HEADERS/PUSH_PROMISE
// block, plus Order recording the exact sequence pseudo-headers were
// received in (for fingerprint fidelity) or, for a freshly constructed
// request, the sequence they should be emitted in.
type Pseudo struct {
	Method    *string
	Scheme    *string
	Authority *string
	Path      *string
	Protocol  *string
	Status    *string

	Order []string
}

// IsRequest reports whether the pseudo set looks like a request set
// (method/scheme/authority/path/protocol) as opposed to a response set
// (status). Spec invariant: mixing the two sets is malformed.
func (p *Pseudo) IsRequest() bool { return p.Method != nil || p.Path != nil || p.Authority != nil || p.Scheme != nil || p.Protocol != nil }

// IsResponse reports whether the pseudo set is a response set.
func (p *Pseudo) IsResponse() bool { return p.Status != nil }

// Mixed reports whether both request-shaped and response-shaped
// pseudo-headers are present, which is malformed per RFC 7540 §8.1.2.3.
func (p *Pseudo) Mixed() bool { return p.IsRequest() && p.IsResponse() }

// set records a pseudo-header occurrence, appending to Order and
// returning false if name was already set (a repeated pseudo-header,
// which the caller must treat as a malformed-block condition while
// continuing to decode for HPACK table consistency).
func (p *Pseudo) set(name, value string) (firstOccurrence bool) {
	p.Order = append(p.Order, name)
	switch name {
	case PseudoMethod:
		if p.Method != nil {
			return false
		}
		p.Method = &value
	case PseudoScheme:
		if p.Scheme != nil {
			return false
		}
		p.Scheme = &value
	case PseudoAuthority:
		if p.Authority != nil {
			return false
		}
		p.Authority = &value
	case PseudoPath:
		if p.Path != nil {
			return false
		}
		p.Path = &value
	case PseudoProtocol:
		if p.Protocol != nil {
			return false
		}
		p.Protocol = &value
	case PseudoStatus:
		if p.Status != nil {
			return false
		}
		p.Status = &value
	}
	return true
}

// emitOrder yields (name, value) pairs in the recorded Order first,
// followed by any set-but-unrecorded pseudo-headers (possible when a
// caller fills in a Pseudo's fields directly without listing them in
// Order), matching the "recorded order, then remaining"
// encode algorithm from the component design.
func (p *Pseudo) emitOrder() [][2]string {
	seen := make(map[string]bool, 6)
	out := make([][2]string, 0, 6)
	get := func(name string) (string, bool) {
		switch name {
		case PseudoMethod:
			if p.Method != nil {
				return *p.Method, true
			}
		case PseudoScheme:
			if p.Scheme != nil {
				return *p.Scheme, true
			}
		case PseudoAuthority:
			if p.Authority != nil {
				return *p.Authority, true
			}
		case PseudoPath:
			if p.Path != nil {
				return *p.Path, true
			}
		case PseudoProtocol:
			if p.Protocol != nil {
				return *p.Protocol, true
			}
		case PseudoStatus:
			if p.Status != nil {
				return *p.Status, true
			}
		}
		return "", false
	}
	for _, name := range p.Order {
		if seen[name] {
			continue
		}
		if v, ok := get(name); ok {
			out = append(out, [2]string{name, v})
			seen[name] = true
		}
	}
	for _, name := range []string{PseudoMethod, PseudoScheme, PseudoAuthority, PseudoPath, PseudoProtocol, PseudoStatus} {
		if seen[name] {
			continue
		}
		if v, ok := get(name); ok {
			out = append(out, [2]string{name, v})
		}
	}
	return out
}

// Request builds a request Pseudo from a method, a target URI, and an
// optional extended-CONNECT protocol (RFC 8441). method is conventionally
// uppercase (e.g. "GET", "CONNECT", "OPTIONS").
//
// CONNECT without protocol omits :scheme and :path, per RFC 7540 §8.3.
// CONNECT with protocol includes both, per RFC 8441 §4. Every other
// method defaults an empty path to "*" for OPTIONS and "/" otherwise.
func Request(method, rawURI string, protocol *string) (*Pseudo, error) {
	p := &Pseudo{}
	m := method
	p.Method = &m

	isConnect := strings.EqualFold(method, "CONNECT")

	if isConnect && protocol == nil {
		if u, err := url.Parse(rawURI); err == nil && u.Host != "" {
			authority := u.Host
			p.Authority = &authority
		} else {
			p.Authority = &rawURI
		}
		p.Order = []string{PseudoMethod, PseudoAuthority}
		return p, nil
	}

	u, err := url.Parse(rawURI)
	if err != nil {
		return nil, err
	}

	scheme := internScheme(u.Scheme).String()
	p.Scheme = &scheme

	authority := u.Host
	p.Authority = &authority

	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	if path == "" {
		if strings.EqualFold(method, "OPTIONS") {
			path = "*"
		} else {
			path = "/"
		}
	}
	p.Path = &path

	order := []string{PseudoMethod, PseudoScheme, PseudoAuthority, PseudoPath}
	if protocol != nil {
		p.Protocol = protocol
		order = append(order, PseudoProtocol)
	}
	p.Order = order
	return p, nil
}

// Response builds a response Pseudo carrying only :status.
func Response(statusCode string) *Pseudo {
	s := statusCode
	return &Pseudo{Status: &s, Order: []string{PseudoStatus}}
}
