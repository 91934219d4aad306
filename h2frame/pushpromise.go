package h2frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/net/http2/hpack"
)

// ErrUnsafePushMethod is returned when a PUSH_PROMISE's pseudo method is
// not GET or HEAD (safe and cacheable, per RFC 7540 §8.2).
var ErrUnsafePushMethod = errors.New("h2frame: push promise method must be GET or HEAD")

// ErrPushHasBody is returned when a PUSH_PROMISE carries a non-zero
// content-length.
var ErrPushHasBody = errors.New("h2frame: push promise must not have a body")

// PushPromise is a decoded or to-be-encoded PUSH_PROMISE frame.
type PushPromise struct {
	StreamID         uint32
	PromisedStreamID uint32
	HeaderBlock      HeaderBlock
	Flags            PushPromiseFlags
}

func validatePushRequest(b *HeaderBlock) error {
	if b.Pseudo.Method == nil || (!strings.EqualFold(*b.Pseudo.Method, "GET") && !strings.EqualFold(*b.Pseudo.Method, "HEAD")) {
		return ErrUnsafePushMethod
	}
	for _, f := range b.Fields {
		if strings.EqualFold(f.Name, "content-length") {
			if n, err := strconv.Atoi(f.Value); err != nil || n != 0 {
				return ErrPushHasBody
			}
		}
	}
	return nil
}

// LoadPushPromise parses and HPACK-decodes a PUSH_PROMISE frame payload.
// The promised stream id is a fixed 4-byte field preceding the HPACK
// block (after any padding byte), per RFC 7540 §6.6.
func LoadPushPromise(streamID uint32, flags PushPromiseFlags, payload []byte, maxListSize uint32, decoder *hpack.Decoder) (*PushPromise, error) {
	flags = flags.Mask()
	if streamID == 0 {
		return nil, ErrInvalidStreamID
	}

	rest := payload
	var padLen int
	if flags.Has(PPFlagPadded) {
		if len(rest) < 1 {
			return nil, ErrMalformedMessage
		}
		padLen = int(rest[0])
		rest = rest[1:]
	}

	if len(rest) < 4 {
		return nil, ErrMalformedMessage
	}
	promisedID := binary.BigEndian.Uint32(rest[:4]) &^ 0x8000_0000
	rest = rest[4:]

	if padLen > len(rest) {
		return nil, ErrTooMuchPadding
	}
	hpackBlock := rest[:len(rest)-padLen]

	block, err := decodeBlock(hpackBlock, maxListSize, decoder)
	pp := &PushPromise{StreamID: streamID, PromisedStreamID: promisedID, HeaderBlock: *block, Flags: flags}
	if err != nil {
		return pp, err
	}
	if err := validatePushRequest(block); err != nil {
		return pp, err
	}
	return pp, nil
}

// EncodePushPromise renders pp as a PUSH_PROMISE frame into dst,
// returning a *Continuation on HPACK-block overflow exactly like Encode.
func EncodePushPromise(pp *PushPromise, dst *bytes.Buffer, maxFrameSize uint32) (*Continuation, error) {
	if err := validatePushRequest(&pp.HeaderBlock); err != nil {
		return nil, err
	}

	block, err := encodeHeaderBlock(&pp.HeaderBlock)
	if err != nil {
		return nil, err
	}

	var idBuf bytes.Buffer
	writePromisedStreamID(&idBuf, pp.PromisedStreamID)

	flags := pp.Flags
	payload := block
	var cont *Continuation
	available := int(maxFrameSize) - idBuf.Len()
	if maxFrameSize > 0 && len(payload) > available {
		cont = &Continuation{StreamID: pp.StreamID, Remaining: append([]byte(nil), payload[available:]...)}
		payload = payload[:available]
		flags &^= PPFlagEndHeaders
	}

	var body bytes.Buffer
	body.Write(idBuf.Bytes())
	body.Write(payload)

	writeFrameHead(dst, body.Len(), frameTypePushPromise, byte(flags), pp.StreamID)
	dst.Write(body.Bytes())

	return cont, nil
}

func writePromisedStreamID(dst *bytes.Buffer, id uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], id&0x7fff_ffff)
	dst.Write(b[:])
}
