package sockopts

import "errors"

// errUnsupported marks an option as absent on the current build
// target; applyOptions logs and continues rather than failing.
var errUnsupported = errors.New("sockopts: option not supported on this platform")
