package status

import (
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"

	"github.com/caddyserver/wireframe/internal/sharedstr"
)

// reserved header names that Status owns on the wire; user metadata is
// stripped of these three before being stored or emitted.
const (
	HeaderStatus  = "grpc-status"
	HeaderMessage = "grpc-message"
	HeaderDetails = "grpc-status-details-bin"
)

// Status is a canonical error/success value carrying a Code, a
// human-readable message, an opaque details blob, and arbitrary caller
// metadata. It is immutable after construction except for attaching a
// source error and mutating Metadata.
type Status struct {
	code     Code
	message  sharedstr.Str
	details  []byte
	Metadata http.Header

	source error
}

// New constructs a Status with the given code and message.
func New(code Code, message string) *Status {
	return &Status{
		code:     code,
		message:  sharedstr.New(message),
		Metadata: http.Header{},
	}
}

// WithDetails constructs a Status carrying an opaque details payload.
func WithDetails(code Code, message string, details []byte) *Status {
	s := New(code, message)
	s.details = details
	return s
}

// Code returns the status code. If Code is OK, callers MUST treat the
// status as success regardless of Message/Details content.
func (s *Status) Code() Code { return s.code }

// Message returns the human-readable message.
func (s *Status) Message() string { return s.message.String() }

// Details returns the opaque details payload.
func (s *Status) Details() []byte { return s.details }

// OK reports whether the status represents success.
func (s *Status) OK() bool { return s.code == OK }

// Source returns the underlying error this status was derived from, if
// any.
func (s *Status) Source() error { return s.source }

// WithSource attaches an underlying cause, returning the receiver for
// chaining. It is the only mutation this type allows besides Metadata.
func (s *Status) WithSource(err error) *Status {
	s.source = err
	return s
}

// Unwrap exposes the source error to errors.Is/errors.As.
func (s *Status) Unwrap() error { return s.source }

func (s *Status) Error() string {
	return s.code.String() + ": " + s.Message()
}

// one constructor per code, matching the one-constructor-per-variant
// surface named in the component design.
func Cancel(msg string) *Status              { return New(Cancelled, msg) }
func UnknownErr(msg string) *Status          { return New(Unknown, msg) }
func InvalidArg(msg string) *Status          { return New(InvalidArgument, msg) }
func DeadlineExceededErr(msg string) *Status { return New(DeadlineExceeded, msg) }
func NotFoundErr(msg string) *Status         { return New(NotFound, msg) }
func AlreadyExistsErr(msg string) *Status    { return New(AlreadyExists, msg) }
func PermissionDeniedErr(msg string) *Status { return New(PermissionDenied, msg) }
func ResourceExhaustedErr(msg string) *Status {
	return New(ResourceExhausted, msg)
}
func FailedPreconditionErr(msg string) *Status { return New(FailedPrecondition, msg) }
func AbortedErr(msg string) *Status            { return New(Aborted, msg) }
func OutOfRangeErr(msg string) *Status         { return New(OutOfRange, msg) }
func UnimplementedErr(msg string) *Status      { return New(Unimplemented, msg) }
func InternalErr(msg string) *Status           { return New(Internal, msg) }
func UnavailableErr(msg string) *Status        { return New(Unavailable, msg) }
func DataLossErr(msg string) *Status           { return New(DataLoss, msg) }
func UnauthenticatedErr(msg string) *Status    { return New(Unauthenticated, msg) }
func Success() *Status                        { return New(OK, "") }

// H2Reason is the subset of HTTP/2 error codes (RFC 7540 §7) that the
// status layer understands.
type H2Reason uint32

const (
	H2NoError            H2Reason = 0x0
	H2ProtocolError      H2Reason = 0x1
	H2InternalError      H2Reason = 0x2
	H2FlowControlError   H2Reason = 0x3
	H2SettingsTimeout    H2Reason = 0x4
	H2StreamClosed       H2Reason = 0x5
	H2FrameSizeError     H2Reason = 0x6
	H2RefusedStream      H2Reason = 0x7
	H2Cancel             H2Reason = 0x8
	H2CompressionError   H2Reason = 0x9
	H2ConnectError       H2Reason = 0xa
	H2EnhanceYourCalm    H2Reason = 0xb
	H2InadequateSecurity H2Reason = 0xc
	H2HTTP11Required    H2Reason = 0xd
)

// TransportError carries an HTTP/2 stream/connection error reason.
type TransportError struct {
	Reason H2Reason
}

func (e *TransportError) Error() string { return "transport error" }

// TimeoutExpired is a marker error so the status layer can recognise
// deadline expiry and map it to Cancelled even when the timeout is
// signalled deep in a source chain (see FromError).
var TimeoutExpired = errors.New("timeout expired")

// ConnectError wraps a failure to establish a connection, mapped to
// Unavailable regardless of its own source chain.
type ConnectError struct{ Err error }

func (e *ConnectError) Error() string { return "connect error: " + e.Err.Error() }
func (e *ConnectError) Unwrap() error { return e.Err }

func h2ReasonToCode(r H2Reason) Code {
	switch r {
	case H2NoError, H2ProtocolError, H2InternalError, H2FlowControlError,
		H2SettingsTimeout, H2CompressionError, H2ConnectError:
		return Internal
	case H2RefusedStream:
		return Unavailable
	case H2Cancel:
		return Cancelled
	case H2EnhanceYourCalm:
		return ResourceExhausted
	case H2InadequateSecurity:
		return PermissionDenied
	default:
		return Unknown
	}
}

// ioErrKindToCode maps the net.Error/io error taxonomy to a Code,
// following the precedence table in the component design: a handful of
// recognisable stdlib sentinel errors first, then net.Error timeouts,
// then errno values wrapped in *net.OpError, defaulting to Unknown.
func ioErrKindToCode(err error) Code {
	switch {
	case errors.Is(err, net.ErrClosed):
		return Unavailable
	case errors.Is(err, io.ErrClosedPipe):
		return Internal
	case errors.Is(err, io.ErrUnexpectedEOF):
		return OutOfRange
	case errors.Is(err, io.EOF):
		return Unknown
	case errors.Is(err, os.ErrPermission):
		return PermissionDenied
	case errors.Is(err, os.ErrExist):
		return AlreadyExists
	case errors.Is(err, os.ErrNotExist):
		return NotFound
	case errors.Is(err, os.ErrDeadlineExceeded):
		return DeadlineExceeded
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return DeadlineExceeded
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED),
			errors.Is(opErr.Err, syscall.ECONNRESET),
			errors.Is(opErr.Err, syscall.ENOTCONN),
			errors.Is(opErr.Err, syscall.EADDRINUSE),
			errors.Is(opErr.Err, syscall.EADDRNOTAVAIL):
			return Unavailable
		case errors.Is(opErr.Err, syscall.EPIPE),
			errors.Is(opErr.Err, syscall.EWOULDBLOCK),
			errors.Is(opErr.Err, syscall.EINTR):
			return Internal
		case errors.Is(opErr.Err, syscall.ECONNABORTED):
			return Aborted
		}
	}

	return Unknown
}

// httpStatusToCode maps a plain HTTP status code to a Code when the
// response carries no grpc-status trailer, per the RFC-mapping table in
// the component design. A 200 with no trailers is the caller's signal to
// treat the stream as a clean end-of-stream rather than an error; that
// case is handled by InferGRPCStatus, not here.
func httpStatusToCode(httpStatus int) Code {
	switch httpStatus {
	case http.StatusBadRequest:
		return Internal
	case http.StatusUnauthorized:
		return Unauthenticated
	case http.StatusForbidden:
		return PermissionDenied
	case http.StatusNotFound:
		return Unimplemented
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return Unavailable
	default:
		return Unknown
	}
}

// FromError walks the error source chain with the precedence described in
// the component design: a *Status is cloned (code/message/details/
// metadata, never source); a *TransportError maps via the HTTP/2 reason
// table; a *ConnectError maps to Unavailable; TimeoutExpired anywhere in
// the chain maps to Cancelled; everything else falls through to the I/O
// taxonomy and finally to Unknown carrying the error's Display string.
func FromError(err error) *Status {
	if err == nil {
		return Success()
	}

	var asStatus *Status
	if errors.As(err, &asStatus) {
		clone := New(asStatus.code, asStatus.Message())
		clone.details = append([]byte(nil), asStatus.details...)
		clone.Metadata = asStatus.Metadata.Clone()
		return clone
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return New(h2ReasonToCode(transportErr.Reason), err.Error()).WithSource(err)
	}

	var connectErr *ConnectError
	if errors.As(err, &connectErr) {
		return New(Unavailable, err.Error()).WithSource(err)
	}

	if errors.Is(err, TimeoutExpired) {
		return New(Cancelled, err.Error()).WithSource(err)
	}

	if code := ioErrKindToCode(err); code != Unknown {
		return New(code, err.Error()).WithSource(err)
	}

	return New(Unknown, err.Error()).WithSource(err)
}

// InferGRPCStatus implements the three-way outcome described in the
// component design: a successful status, a non-OK status derived from
// trailers or the HTTP status, or a nil status signalling clean
// end-of-stream for a 200 response that already sent its status in the
// initial headers.
func InferGRPCStatus(trailers http.Header, httpStatus int) (ok bool, derived *Status) {
	if trailers != nil {
		if v := trailers.Get(HeaderStatus); v != "" {
			st, err := FromHeaderMap(trailers)
			if err != nil {
				return false, InternalErr(err.Error())
			}
			if st.Code() == OK {
				return true, nil
			}
			return false, st
		}
	}
	if httpStatus == http.StatusOK {
		// clean end of stream; status, if any, travelled in initial headers
		return false, nil
	}
	return false, New(httpStatusToCode(httpStatus), "")
}
