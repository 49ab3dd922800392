// Package snowflake implements the time-ordered 64-bit identifiers used as
// primary keys throughout the registry. An ID embeds the number of
// milliseconds since Epoch in bits 16 and up; the low 16 bits disambiguate
// IDs created within the same millisecond. Decoded creation time is
// therefore non-decreasing as IDs increase.
package snowflake

import (
	"math"
	"time"
)

// Epoch is the zero point for the millisecond offset embedded in IDs.
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

const timestampShift = 16

// Time returns the creation time encoded in id. Total over the whole ID
// space: the offset is applied in seconds because a nanosecond Duration
// wraps for IDs near 1<<63.
func Time(id int64) time.Time {
	ms := id >> timestampShift
	return time.Unix(Epoch.Unix()+ms/1000, ms%1000*int64(time.Millisecond)).UTC()
}

// MinIDAt returns the smallest ID whose decoded time is not before t.
// Times at or before Epoch map to 0.
func MinIDAt(t time.Time) int64 {
	ms := t.Sub(Epoch).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return ms << timestampShift
}

// MaxIDAt returns the largest ID whose decoded time is not after t.
func MaxIDAt(t time.Time) int64 {
	ms := t.Sub(Epoch).Milliseconds()
	if ms < 0 {
		return 0
	}
	id := ms<<timestampShift | (1<<timestampShift - 1)
	if id < 0 {
		return math.MaxInt64
	}
	return id
}

// Range translates an optional creation-time window into an ID window.
// Absent bounds map to 0 and math.MaxInt64 so the result can be intersected
// with explicit ID bounds using max/min.
func Range(minCreatedAt, maxCreatedAt *time.Time) (minID, maxID int64) {
	minID = 0
	maxID = math.MaxInt64
	if minCreatedAt != nil {
		minID = MinIDAt(*minCreatedAt)
	}
	if maxCreatedAt != nil {
		maxID = MaxIDAt(*maxCreatedAt)
	}
	return minID, maxID
}
