package baseline

import (
	"encoding/json"
	"fmt"
	"time"
)

// legacyLayouts are the timestamp shapes found in version 0 baselines:
// local time with no zone, with or without fractional seconds.
var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Stamp is a timestamp persisted as RFC 3339 with nanoseconds.
type Stamp struct {
	time.Time
}

// NewStamp returns t as a Stamp with the monotonic reading stripped.
func NewStamp(t time.Time) Stamp {
	return Stamp{Time: t.Round(0)}
}

// MarshalJSON implements json.Marshaler.
func (s Stamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler. Zone-less timestamps are read
// in the local zone.
func (s *Stamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		s.Time = t
		return nil
	}

	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			s.Time = t
			return nil
		}
	}

	return fmt.Errorf("unrecognised timestamp %q", raw)
}
