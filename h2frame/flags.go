// Copyright 2015 Matthew Holt and The Caddy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package h2frame parses and emits HTTP/2 HEADERS/PUSH_PROMISE/CONTINUATION
// frames on top of golang.org/x/net/http2/hpack, preserving pseudo-header
// receipt order for TLS/H2 fingerprinting fidelity and enforcing
// SETTINGS_MAX_HEADER_LIST_SIZE accounting.
package h2frame

// frame type octets, RFC 7540 §11.2.
const (
	frameTypeHeaders      byte = 0x1
	frameTypePushPromise  byte = 0x5
	frameTypeContinuation byte = 0x9
)

// HeadersFlags is the flag byte of a HEADERS frame.
type HeadersFlags uint8

const (
	FlagEndStream HeadersFlags = 0x1
	FlagEndHeaders HeadersFlags = 0x4
	FlagPadded     HeadersFlags = 0x8
	FlagPriority   HeadersFlags = 0x20

	HeadersFlagsAll = FlagEndStream | FlagEndHeaders | FlagPadded | FlagPriority
)

// DefaultHeadersFlags returns the default flag set for a freshly
// constructed frame: END_HEADERS set, nothing else.
func DefaultHeadersFlags() HeadersFlags { return FlagEndHeaders }

func (f HeadersFlags) Has(bit HeadersFlags) bool { return f&bit != 0 }

// Mask clears any bit not in HeadersFlagsAll, applied on load per the
// component design ("masked by ALL on load").
func (f HeadersFlags) Mask() HeadersFlags { return f & HeadersFlagsAll }

// PushPromiseFlags is the flag byte of a PUSH_PROMISE frame; it shares the
// END_HEADERS and PADDED bits with HEADERS but has no END_STREAM or
// PRIORITY meaning.
type PushPromiseFlags uint8

const (
	PPFlagEndHeaders PushPromiseFlags = 0x4
	PPFlagPadded     PushPromiseFlags = 0x8

	PushPromiseFlagsAll = PPFlagEndHeaders | PPFlagPadded
)

func DefaultPushPromiseFlags() PushPromiseFlags { return PPFlagEndHeaders }

func (f PushPromiseFlags) Has(bit PushPromiseFlags) bool { return f&bit != 0 }
func (f PushPromiseFlags) Mask() PushPromiseFlags        { return f & PushPromiseFlagsAll }
