// timestamp.go — Timestamp value type: HH:MM:SS.mmm, wrapping arithmetic.
package types

import (
	"fmt"
)

// Timestamp is a time-of-day with millisecond resolution, wrapping modulo 24h.
type Timestamp struct {
	Hour   uint8
	Minute uint8
	Second uint8
	Millis uint16
}

// ParseTimestamp parses "HH:MM:SS.mmm". On malformed input it returns the
// zero Timestamp and a non-nil error — callers substitute the zero value and
// log, per the ParseError contract in spec §7.
func ParseTimestamp(s string) (Timestamp, error) {
	var h, m, sec, ms int
	n, err := fmt.Sscanf(s, "%d:%d:%d.%d", &h, &m, &sec, &ms)
	if err != nil || n != 4 {
		return Timestamp{}, fmt.Errorf("parse timestamp %q: %w", s, errMalformed)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 || ms < 0 || ms > 999 {
		return Timestamp{}, fmt.Errorf("parse timestamp %q: out of range: %w", s, errMalformed)
	}
	return Timestamp{Hour: uint8(h), Minute: uint8(m), Second: uint8(sec), Millis: uint16(ms)}, nil
}

// String formats t as "HH:MM:SS.mmm", zero-padded, milliseconds always three digits.
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hour, t.Minute, t.Second, t.Millis)
}

// MarshalText implements encoding.TextMarshaler so Timestamp nests cleanly in JSON.
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Malformed input yields
// the zero Timestamp, matching ParseTimestamp's substitution behavior.
func (t *Timestamp) UnmarshalText(data []byte) error {
	parsed, err := ParseTimestamp(string(data))
	if err != nil {
		*t = Timestamp{}
		return nil
	}
	*t = parsed
	return nil
}

// totalMillis converts t to a signed millisecond count, used internally for
// wrapping arithmetic.
func (t Timestamp) totalMillis() int32 {
	return int32(t.Hour)*3_600_000 + int32(t.Minute)*60_000 + int32(t.Second)*1_000 + int32(t.Millis)
}

func fromTotalMillis(total int32) Timestamp {
	if total < 0 {
		total += 24 * 3_600_000
	}
	total %= 24 * 3_600_000
	h := total / 3_600_000
	total %= 3_600_000
	m := total / 60_000
	total %= 60_000
	s := total / 1_000
	ms := total % 1_000
	return Timestamp{Hour: uint8(h), Minute: uint8(m), Second: uint8(s), Millis: uint16(ms)}
}

// Add returns t+rhs, wrapping modulo 24h.
func (t Timestamp) Add(rhs Timestamp) Timestamp {
	return fromTotalMillis(t.totalMillis() + rhs.totalMillis())
}

// Sub returns t-rhs. A negative result wraps by re-adding 24h, so
// 03:00:00.000 - 05:00:00.000 = 22:00:00.000.
func (t Timestamp) Sub(rhs Timestamp) Timestamp {
	return fromTotalMillis(t.totalMillis() - rhs.totalMillis())
}

// Equal reports field-wise equality.
func (t Timestamp) Equal(other Timestamp) bool {
	return t == other
}

// Less orders timestamps within a single day.
func (t Timestamp) Less(other Timestamp) bool {
	return t.totalMillis() < other.totalMillis()
}
