package sockopts

import (
	"encoding/json"
	"fmt"
	"time"
)

// TCPKeepAlive tunes per-connection keepalive probing once SO_KEEPALIVE
// is enabled. All three fields are optional; a nil field leaves the
// platform default in place.
type TCPKeepAlive struct {
	Time     *time.Duration
	Interval *time.Duration
	Retries  *int
}

// UnmarshalJSON accepts either a bare duration (applied to Time only) or
// the full {time, interval, retries} object, the untagged-enum shape the
// component design calls out for this sub-struct.
func (k *TCPKeepAlive) UnmarshalJSON(data []byte) error {
	var dur durationString
	if err := json.Unmarshal(data, &dur); err == nil {
		d := time.Duration(dur)
		*k = TCPKeepAlive{Time: &d}
		return nil
	}

	var full struct {
		Time     *durationString `json:"time"`
		Interval *durationString `json:"interval"`
		Retries  *int            `json:"retries"`
	}
	if err := json.Unmarshal(data, &full); err != nil {
		return fmt.Errorf("sockopts: tcp keepalive must be a duration or {time,interval,retries}: %w", err)
	}
	out := TCPKeepAlive{Retries: full.Retries}
	if full.Time != nil {
		d := time.Duration(*full.Time)
		out.Time = &d
	}
	if full.Interval != nil {
		d := time.Duration(*full.Interval)
		out.Interval = &d
	}
	*k = out
	return nil
}

// durationString accepts Go duration strings ("30s") or a bare integer
// number of nanoseconds, matching time.Duration's own common JSON forms.
type durationString time.Duration

func (d *durationString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = durationString(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = durationString(time.Duration(n))
	return nil
}
