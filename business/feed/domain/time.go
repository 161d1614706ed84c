package domain

import (
	"fmt"
	"strconv"
	"time"
)

// UnixTime decodes the daemon's unix-seconds timestamps.
type UnixTime time.Time

// UnmarshalJSON parses an integer number of seconds since the epoch.
func (t *UnixTime) UnmarshalJSON(data []byte) error {
	secs, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid unix timestamp %q: %w", string(data), err)
	}
	*t = UnixTime(time.Unix(secs, 0).UTC())
	return nil
}

// MarshalJSON encodes the timestamp as unix seconds.
func (t UnixTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(time.Time(t).Unix(), 10)), nil
}

// Time returns the underlying time.Time.
func (t UnixTime) Time() time.Time {
	return time.Time(t)
}
