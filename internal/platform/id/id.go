// Package id generates request ids and grant ids.
//
// Ids are 26 lowercase Crockford base32 characters: a 48-bit millisecond
// timestamp followed by 80 random bits, so ids sort by creation time.
package id

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"
)

var encoding = base32.NewEncoding("0123456789abcdefghjkmnpqrstvwxyz").WithPadding(base32.NoPadding)

// NewID returns a new time-ordered id.
func NewID() (string, error) {
	return newID(time.Now(), rand.Reader)
}

func newID(now time.Time, entropy io.Reader) (string, error) {
	var raw [16]byte
	ms := uint64(now.UnixMilli())
	var stamp [8]byte
	binary.BigEndian.PutUint64(stamp[:], ms)
	copy(raw[:6], stamp[2:])
	if _, err := io.ReadFull(entropy, raw[6:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return encoding.EncodeToString(raw[:]), nil
}

// Time returns the creation time encoded in an id.
func Time(value string) (time.Time, error) {
	raw, err := encoding.DecodeString(strings.ToLower(value))
	if err != nil || len(raw) != 16 {
		return time.Time{}, fmt.Errorf("invalid id %q", value)
	}
	var stamp [8]byte
	copy(stamp[2:], raw[:6])
	return time.UnixMilli(int64(binary.BigEndian.Uint64(stamp[:]))), nil
}
