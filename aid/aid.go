// Package aid implements the time-sortable note id format. An id is the
// base36 encoding of the creation time in milliseconds since 2000-01-01
// UTC, zero-padded to 8 characters, followed by a 2 character counter.
// Lexicographic order on ids is therefore creation order, and the
// timestamp can be recovered from the id alone.
package aid

import (
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const (
	// Offset of the id epoch (2000-01-01T00:00:00Z) in unix milliseconds.
	epochOffset = 946684800000

	timeLength    = 8
	counterLength = 2
	Length        = timeLength + counterLength
)

var ErrInvalidId = errors.New("aid: invalid id")

var counter atomic.Uint64

// New mints an id for the given creation time.
func New(t time.Time) string {
	ms := t.UnixMilli() - epochOffset
	if ms < 0 {
		ms = 0
	}
	c := counter.Add(1) % (36 * 36)
	return pad(strconv.FormatInt(ms, 36), timeLength) + pad(strconv.FormatUint(c, 36), counterLength)
}

// pad left-pads a base36 string with zeros so ids stay fixed width and
// lexicographically sortable.
func pad(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat("0", length-len(s)) + s
}

// Parse extracts the creation time encoded in an id.
func Parse(id string) (time.Time, error) {
	if len(id) < timeLength {
		return time.Time{}, ErrInvalidId
	}
	ms, err := strconv.ParseInt(id[:timeLength], 36, 64)
	if err != nil {
		return time.Time{}, ErrInvalidId
	}
	return time.UnixMilli(ms + epochOffset).UTC(), nil
}

// SafeParse is like Parse but returns the zero time for malformed ids.
// Feed rendering is best effort and never fails on a bad timestamp.
func SafeParse(id string) time.Time {
	t, err := Parse(id)
	if err != nil {
		return time.Time{}
	}
	return t
}
