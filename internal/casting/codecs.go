package casting

import (
	"fmt"
	"time"
)

// TimestampLayout is fixed-width ISO-8601 in UTC with microseconds, so the
// lexical order of stored values equals their time order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// TimeText stores time.Time as TimestampLayout text.
func TimeText() Codec[time.Time, string] {
	return Funcs[time.Time, string]{
		To: func(t time.Time) (string, error) {
			return FormatTimestamp(t), nil
		},
		From: func(s string) (time.Time, error) {
			t, err := time.Parse(TimestampLayout, s)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
			}
			return t, nil
		},
	}
}

// FormatTimestamp renders t the way TimeText stores it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// BoolInt stores bool as 0/1.
func BoolInt() Codec[bool, int16] {
	return Funcs[bool, int16]{
		To: func(b bool) (int16, error) {
			if b {
				return 1, nil
			}
			return 0, nil
		},
		From: func(v int16) (bool, error) {
			switch v {
			case 0:
				return false, nil
			case 1:
				return true, nil
			}
			return false, fmt.Errorf("invalid boolean flag %d", v)
		},
	}
}

// Enum stores a string-backed enum as plain text, rejecting unknown values on
// the way in and out.
func Enum[T ~string](valid func(T) bool) Codec[T, string] {
	check := func(v T) error {
		if !valid(v) {
			return fmt.Errorf("invalid value %q", string(v))
		}
		return nil
	}
	return Funcs[T, string]{
		To: func(v T) (string, error) {
			if err := check(v); err != nil {
				return "", err
			}
			return string(v), nil
		},
		From: func(s string) (T, error) {
			v := T(s)
			return v, check(v)
		},
	}
}

// Int64 stores a named int64 type as its underlying value.
func Int64[T ~int64]() Codec[T, int64] {
	return Funcs[T, int64]{
		To:   func(v T) (int64, error) { return int64(v), nil },
		From: func(v int64) (T, error) { return T(v), nil },
	}
}
