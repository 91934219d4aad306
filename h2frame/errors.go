package h2frame

import "errors"

// Protocol errors named in the component design. These are stream-scoped
// (the connection continues) except where HPACK table desync makes them
// connection-fatal; callers decide that policy, this package only reports
// the condition.
var (
	ErrInvalidStreamID     = errors.New("h2frame: stream id must not be zero")
	ErrMalformedMessage    = errors.New("h2frame: malformed header block")
	ErrTooMuchPadding      = errors.New("h2frame: pad length exceeds payload")
	ErrInvalidDependencyID = errors.New("h2frame: stream depends on itself")
)
