package osc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeTag is a 64-bit NTP fixed-point timestamp ('t'): the upper 32 bits
// count seconds since 1900-01-01 UTC, the lower 32 bits are the fraction.
type TimeTag uint64

// Immediate is the special time tag meaning "process immediately".
const Immediate TimeTag = 1

// ntpEpochOffset is the number of seconds between 1900-01-01 and 1970-01-01.
const ntpEpochOffset = 2208988800

const immediateText = "immediate"

// Token reports TokenTimeTag.
func (TimeTag) Token() Token { return TokenTimeTag }

// NewTimeTag builds a time tag from its seconds and fraction parts.
func NewTimeTag(seconds, fraction uint32) TimeTag {
	return TimeTag(uint64(seconds)<<32 | uint64(fraction))
}

// FromTime converts t to a time tag. Only the first NTP era
// (1900-01-01 to 2036-02-07) is representable; other instants wrap.
func FromTime(t time.Time) TimeTag {
	secs := uint64(t.Unix() + ntpEpochOffset)
	nanos := uint64(t.Nanosecond())
	frac := (nanos<<32 + 500_000_000) / 1_000_000_000
	return TimeTag(secs<<32 + frac)
}

// Seconds returns the whole seconds since the NTP epoch.
func (tt TimeTag) Seconds() uint32 {
	return uint32(tt >> 32)
}

// Fraction returns the fractional second in units of 2^-32 s.
func (tt TimeTag) Fraction() uint32 {
	return uint32(tt)
}

// IsImmediate reports whether tt is the Immediate sentinel.
func (tt TimeTag) IsImmediate() bool {
	return tt == Immediate
}

// Time converts tt to a UTC time, rounded to the nearest nanosecond.
func (tt TimeTag) Time() time.Time {
	secs := int64(tt.Seconds()) - ntpEpochOffset
	nanos := (uint64(tt.Fraction())*1_000_000_000 + 1<<31) >> 32
	return time.Unix(secs, int64(nanos)).UTC()
}

// String renders tt as RFC 3339 when that form converts back to exactly the
// same value, "immediate" for Immediate, and as 0x-prefixed hex otherwise.
func (tt TimeTag) String() string {
	if tt.IsImmediate() {
		return immediateText
	}
	if t := tt.Time(); FromTime(t) == tt {
		return t.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("0x%016X", uint64(tt))
}

// timeLayouts are the calendar forms accepted by ParseTimeTag, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimeTag parses the textual forms produced by String, plus raw
// decimal values and a few calendar layouts without a zone (read as UTC).
func ParseTimeTag(s string) (TimeTag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty time tag", ErrInvalidLiteral)
	}
	if strings.EqualFold(s, immediateText) {
		return Immediate, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: time tag %q: %v", ErrInvalidLiteral, s, err)
		}
		return TimeTag(v), nil
	}
	if isDigits(s) {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: time tag %q: %v", ErrInvalidLiteral, s, err)
		}
		return TimeTag(v), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return 0, fmt.Errorf("%w: time tag %q", ErrInvalidLiteral, s)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
