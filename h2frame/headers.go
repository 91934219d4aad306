package h2frame

import (
	"bytes"
	"encoding/binary"
	"strings"

	"golang.org/x/net/http2/hpack"
)

// connection-level field names that are malformed in HTTP/2, RFC 7540
// §8.1.2.2.
var connectionLevelFields = map[string]bool{
	"connection":        true,
	"transfer-encoding":  true,
	"upgrade":            true,
	"keep-alive":         true,
	"proxy-connection":   true,
}

// HeaderBlock is the decoded payload of a HEADERS or PUSH_PROMISE frame:
// the pseudo-header set, the regular fields (in receipt/emission order),
// the cumulative SETTINGS_MAX_HEADER_LIST_SIZE accounting, and whether
// that limit was exceeded.
type HeaderBlock struct {
	Pseudo     Pseudo
	Fields     []hpack.HeaderField
	FieldSize  uint32
	IsOverSize bool
}

// FieldOrder returns the regular field names in the order they were
// stored (receipt order for a decoded block, insertion order for a
// constructed one).
func (b *HeaderBlock) FieldOrder() []string {
	names := make([]string, len(b.Fields))
	for i, f := range b.Fields {
		names[i] = f.Name
	}
	return names
}

// Priority carries the optional stream-dependency data parsed from the
// PRIORITY flag.
type Priority struct {
	StreamDependency uint32
	Exclusive        bool
	Weight           uint8
}

// Headers is a decoded or to-be-encoded HEADERS frame.
type Headers struct {
	StreamID    uint32
	StreamDep   *Priority
	HeaderBlock HeaderBlock
	Flags       HeadersFlags
}

// NewDecoder returns an HPACK decoder with the given dynamic table size,
// ready to be reused across frames on the same connection (the dynamic
// table is connection-scoped, not frame-scoped).
func NewDecoder(maxDynamicTableSize uint32) *hpack.Decoder {
	return hpack.NewDecoder(maxDynamicTableSize, nil)
}

// splitPayload parses the structural envelope common to HEADERS and
// PUSH_PROMISE: optional pad length, optional priority dependency
// (HEADERS only), and returns the remaining HPACK block bytes and the
// parsed priority, if any.
func splitPayload(streamID uint32, padded, hasPriority bool, payload []byte) (hpackBlock []byte, pri *Priority, err error) {
	if streamID == 0 {
		return nil, nil, ErrInvalidStreamID
	}

	rest := payload
	var padLen int
	if padded {
		if len(rest) < 1 {
			return nil, nil, ErrMalformedMessage
		}
		padLen = int(rest[0])
		rest = rest[1:]
	}

	if hasPriority {
		if len(rest) < 5 {
			return nil, nil, ErrMalformedMessage
		}
		raw := binary.BigEndian.Uint32(rest[:4])
		exclusive := raw&0x8000_0000 != 0
		dep := raw &^ 0x8000_0000
		if dep == streamID {
			return nil, nil, ErrInvalidDependencyID
		}
		pri = &Priority{StreamDependency: dep, Exclusive: exclusive, Weight: rest[4]}
		rest = rest[5:]
	}

	if padLen > len(rest) {
		return nil, nil, ErrTooMuchPadding
	}
	hpackBlock = rest[:len(rest)-padLen]
	return hpackBlock, pri, nil
}

// decodeBlock runs hpackBlock through decoder, building a HeaderBlock.
// Every header field is consumed from the HPACK stream to keep the
// shared dynamic table consistent even once the block is known to be
// malformed or over the list-size limit; only storage is truncated.
func decodeBlock(hpackBlock []byte, maxListSize uint32, decoder *hpack.Decoder) (*HeaderBlock, error) {
	block := &HeaderBlock{}
	malformed := false
	seenRegular := false

	decoder.SetEmitFunc(func(f hpack.HeaderField) {
		name := strings.ToLower(f.Name)
		if strings.HasPrefix(name, ":") {
			if seenRegular {
				malformed = true
			}
			if !block.Pseudo.set(name, f.Value) {
				malformed = true
			}
			return
		}

		seenRegular = true
		if connectionLevelFields[name] {
			malformed = true
		}
		if name == "te" && !strings.EqualFold(f.Value, "trailers") {
			malformed = true
		}

		size := uint32(len(f.Name) + len(f.Value) + 32)
		if !block.IsOverSize {
			block.FieldSize += size
			if block.FieldSize >= maxListSize {
				block.IsOverSize = true
			}
		}
		if !block.IsOverSize {
			block.Fields = append(block.Fields, f)
		}
	})

	if _, err := decoder.Write(hpackBlock); err != nil {
		return nil, err
	}

	if malformed || block.Pseudo.Mixed() {
		return block, ErrMalformedMessage
	}
	return block, nil
}

// Load parses and HPACK-decodes a HEADERS frame payload.
func Load(streamID uint32, flags HeadersFlags, payload []byte, maxListSize uint32, decoder *hpack.Decoder) (*Headers, error) {
	flags = flags.Mask()
	hpackBlock, pri, err := splitPayload(streamID, flags.Has(FlagPadded), flags.Has(FlagPriority), payload)
	if err != nil {
		return nil, err
	}

	block, err := decodeBlock(hpackBlock, maxListSize, decoder)
	if err != nil {
		return &Headers{StreamID: streamID, StreamDep: pri, HeaderBlock: *block, Flags: flags}, err
	}

	return &Headers{
		StreamID:    streamID,
		StreamDep:   pri,
		HeaderBlock: *block,
		Flags:       flags,
	}, nil
}

// Continuation carries the hpack bytes that didn't fit in the preceding
// HEADERS/PUSH_PROMISE frame and must be sent as a CONTINUATION frame
// with the same stream id.
type Continuation struct {
	StreamID   uint32
	Remaining  []byte
}

// encodeHeaderBlock renders the pseudo-headers (in recorded/emit order)
// followed by the regular fields (in FieldOrder) through an HPACK
// encoder, returning the raw compressed bytes.
func encodeHeaderBlock(h *HeaderBlock) ([]byte, error) {
	var buf bytes.Buffer
	encoder := hpack.NewEncoder(&buf)
	for _, nv := range h.Pseudo.emitOrder() {
		if err := encoder.WriteField(hpack.HeaderField{Name: nv[0], Value: nv[1]}); err != nil {
			return nil, err
		}
	}
	for _, f := range h.Fields {
		if err := encoder.WriteField(f); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeFrameHead(dst *bytes.Buffer, length int, typ, flags byte, streamID uint32) {
	var head [9]byte
	head[0] = byte(length >> 16)
	head[1] = byte(length >> 8)
	head[2] = byte(length)
	head[3] = typ
	head[4] = flags
	binary.BigEndian.PutUint32(head[5:], streamID&0x7fff_ffff)
	dst.Write(head[:])
}

// Encode renders h as a HEADERS frame into dst. maxFrameSize bounds the
// HEADERS frame's payload (priority fields included); if the HPACK block
// doesn't fit, a *Continuation is returned with the remaining bytes and
// END_HEADERS is cleared on the emitted frame. The caller renders that
// remainder with EncodeContinuation.
func Encode(h *Headers, dst *bytes.Buffer, maxFrameSize uint32) (*Continuation, error) {
	block, err := encodeHeaderBlock(&h.HeaderBlock)
	if err != nil {
		return nil, err
	}

	flags := h.Flags
	payload := block
	var cont *Continuation
	limit := int(maxFrameSize)
	if h.StreamDep != nil {
		limit -= 5
	}
	if limit < 0 {
		limit = 0
	}
	if maxFrameSize > 0 && len(payload) > limit {
		cont = &Continuation{StreamID: h.StreamID, Remaining: append([]byte(nil), payload[limit:]...)}
		payload = payload[:limit]
		flags &^= FlagEndHeaders
	}

	var body bytes.Buffer
	if h.StreamDep != nil {
		flags |= FlagPriority
		var depHeader [5]byte
		dep := h.StreamDep.StreamDependency
		if h.StreamDep.Exclusive {
			dep |= 0x8000_0000
		}
		binary.BigEndian.PutUint32(depHeader[:4], dep)
		depHeader[4] = h.StreamDep.Weight
		body.Write(depHeader[:])
	}
	body.Write(payload)

	writeFrameHead(dst, body.Len(), frameTypeHeaders, byte(flags), h.StreamID)
	dst.Write(body.Bytes())

	return cont, nil
}

// EncodeContinuation renders a CONTINUATION frame carrying c's remaining
// bytes. endHeaders should be true when this is the last CONTINUATION in
// the chain.
func EncodeContinuation(c *Continuation, dst *bytes.Buffer, maxFrameSize uint32, endHeaders bool) *Continuation {
	payload := c.Remaining
	var next *Continuation
	var flags byte
	if maxFrameSize > 0 && uint32(len(payload)) > maxFrameSize {
		next = &Continuation{StreamID: c.StreamID, Remaining: append([]byte(nil), payload[maxFrameSize:]...)}
		payload = payload[:maxFrameSize]
	} else if endHeaders {
		flags = byte(FlagEndHeaders)
	}
	writeFrameHead(dst, len(payload), frameTypeContinuation, flags, c.StreamID)
	dst.Write(payload)
	return next
}
