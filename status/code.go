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

// Package status is a wire-faithful translation layer between transport
// errors (HTTP/2 GOAWAY/RST reasons, socket errors, timeouts) and a
// canonical 17-variant gRPC status model, including header encoding and
// decoding.
package status

import "strconv"

// Code is a closed set of 17 status codes with stable integer encodings,
// matching the gRPC status code space bit for bit so that interop with
// google.golang.org/grpc/codes is a straight cast (see ToGRPCCode).
type Code uint32

const (
	OK Code = iota
	Cancelled
	Unknown
	InvalidArgument
	DeadlineExceeded
	NotFound
	AlreadyExists
	PermissionDenied
	ResourceExhausted
	FailedPrecondition
	Aborted
	OutOfRange
	Unimplemented
	Internal
	Unavailable
	DataLoss
	Unauthenticated

	_maxKnownCode = Unauthenticated
)

var codeNames = [...]string{
	OK:                 "OK",
	Cancelled:          "CANCELLED",
	Unknown:            "UNKNOWN",
	InvalidArgument:    "INVALID_ARGUMENT",
	DeadlineExceeded:   "DEADLINE_EXCEEDED",
	NotFound:           "NOT_FOUND",
	AlreadyExists:      "ALREADY_EXISTS",
	PermissionDenied:   "PERMISSION_DENIED",
	ResourceExhausted:  "RESOURCE_EXHAUSTED",
	FailedPrecondition: "FAILED_PRECONDITION",
	Aborted:            "ABORTED",
	OutOfRange:         "OUT_OF_RANGE",
	Unimplemented:      "UNIMPLEMENTED",
	Internal:           "INTERNAL",
	Unavailable:        "UNAVAILABLE",
	DataLoss:           "DATA_LOSS",
	Unauthenticated:    "UNAUTHENTICATED",
}

// String returns the canonical upper-snake-case name of the code, or the
// raw integer for codes outside the known range (which FromInt32 never
// produces, since it clamps unknown inputs to Unknown, but a direct
// conversion such as Code(n) can, so this stays total for defensive
// callers).
func (c Code) String() string {
	if c <= _maxKnownCode {
		return codeNames[c]
	}
	return "CODE(" + strconv.FormatUint(uint64(c), 10) + ")"
}

// FromInt32 maps an arbitrary integer to a Code. Values outside 0..=16
// map to Unknown, matching the wire contract: an unrecognised grpc-status
// value must never be silently treated as success or as an arbitrary
// other code.
func FromInt32(n int32) Code {
	if n < 0 || n > int32(_maxKnownCode) {
		return Unknown
	}
	return Code(n)
}

// Int32 returns the wire integer for c.
func (c Code) Int32() int32 { return int32(c) }
