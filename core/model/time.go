package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the wire layout used by the persistence service.
const TimeLayout = "2006-01-02 15:04:05"

// Timestamp is a wall-clock date and time on the board, encoded as
// "YYYY-MM-DD HH:mm:ss". The wire carries no offset, so the value is held as
// a floating local time labelled UTC. A Zone relates it to real instants.
type Timestamp struct {
	time.Time
}

// At keeps the wall clock t shows in its own location, at one second
// resolution.
func At(t time.Time) Timestamp {
	return Timestamp{Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// ParseTimestamp parses the wire layout, ISO-8601 without offset, or RFC3339.
// An RFC3339 offset is dropped and the written wall clock kept; use
// Zone.Parse to convert it instead.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range []string{TimeLayout, "2006-01-02T15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return At(t), nil
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// Zone is the location board timestamps are read in. The zero Zone is UTC.
type Zone struct {
	loc *time.Location
}

// NewZone returns the zone for loc. A nil location means UTC.
func NewZone(loc *time.Location) Zone {
	return Zone{loc: loc}
}

// Location returns the zone's location.
func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// At returns the wall clock of instant t in the zone.
func (z Zone) At(t time.Time) Timestamp {
	return At(t.In(z.Location()))
}

// Now is the current wall clock in the zone.
func (z Zone) Now() Timestamp {
	return z.At(time.Now())
}

// Instant returns the real instant ts denotes in the zone.
func (z Zone) Instant(ts Timestamp) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), 0, z.Location())
}

// Parse is ParseTimestamp with RFC3339 input converted into the zone.
func (z Zone) Parse(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return z.At(t), nil
	}
	return ParseTimestamp(s)
}

// MustTimestamp is ParseTimestamp for literals known to be valid.
func MustTimestamp(s string) Timestamp {
	ts, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// String formats the timestamp in the wire layout.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	ts, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}

// TimeRange is a closed interval of wall-clock time.
type TimeRange struct {
	Start Timestamp `json:"startTime"`
	End   Timestamp `json:"endTime"`
}

// Validate reports whether the range is ordered.
func (r TimeRange) Validate() error {
	if r.End.Before(r.Start.Time) {
		return fmt.Errorf("end %s before start %s", r.End, r.Start)
	}
	return nil
}

// Overlaps returns true if [start, end) intersects the range.
func (r TimeRange) Overlaps(start, end time.Time) bool {
	return !(!end.After(r.Start.Time) || !start.Before(r.End.Time))
}
