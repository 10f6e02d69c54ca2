package utils

import "time"

// ISOLayout matches JavaScript's Date.toISOString: UTC, millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}
