package fiva

import (
	"encoding/json"
	"time"

	"github.com/iov-one/fiva/errors"
)

// UnixTime is a point in time in whole seconds since the epoch. Maturities,
// order deadlines and block times are stored and compared in this unit.
type UnixTime int64

// AsUnixTime truncates t to seconds.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// Time returns t in UTC.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// IsZero reports an unset time, such as an order without a deadline.
func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add returns t moved by d. Fractions of a second are dropped.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

func (t UnixTime) String() string {
	return t.Time().Format(time.RFC3339)
}

// UnmarshalJSON reads either seconds or an RFC 3339 string. Messages carry
// numbers, genesis files are easier to write with dates.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var secs int64
	if err := json.Unmarshal(raw, &secs); err != nil {
		var date string
		if json.Unmarshal(raw, &date) != nil {
			return errors.Wrapf(errors.ErrInput, "time %s", raw)
		}
		parsed, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "time %q", date)
		}
		secs = parsed.Unix()
	}
	if secs < 0 {
		return errors.Wrap(errors.ErrInput, "time before epoch")
	}
	*t = UnixTime(secs)
	return nil
}
