// Copyright (C) 2019 Michael J. Fromberger. All Rights Reserved.

// Package totp generates and checks single-use authenticator codes using the
// TOTP algorithm specified in RFC 6238, built on the HOTP construction of
// RFC 4226. Codes are 6 decimal digits over HMAC-SHA1 with 30-second time
// windows, interoperable with Google Authenticator and Authy.
//
// See https://tools.ietf.org/html/rfc6238, https://tools.ietf.org/html/rfc4226
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Period is the width of a time window in seconds. The time-step counter
	// advances once per period.
	Period = 30

	// Digits is the number of decimal digits in a generated code.
	Digits = 6
)

// Errors reported by this package. Errors returned from the API may wrap
// these sentinels with detail; use errors.Is to test for them.
var (
	// ErrInvalidSecret reports that a secret is not valid base32.
	ErrInvalidSecret = errors.New("invalid secret")

	// ErrInvalidConfig reports an out-of-range generation parameter.
	ErrInvalidConfig = errors.New("invalid configuration")
)

var timeNow = time.Now // swapped for testing

// Code returns the code for the current time window. It never blocks and
// reads the clock exactly once. Use Generate to guarantee a minimum
// remaining validity instead.
func Code(secret string) (string, error) {
	return CodeAt(secret, timeNow())
}

// CodeAt returns the code for the time window containing t.
func CodeAt(secret string, t time.Time) (string, error) {
	return CodeForCounter(secret, window(t))
}

// CodeForCounter returns the code for the given counter value, following the
// HOTP construction of RFC 4226. It is a pure function of its arguments.
func CodeForCounter(secret string, counter uint64) (string, error) {
	key, err := ParseKey(secret)
	if err != nil {
		return "", err
	}
	return format(truncate(hmacSHA1(key, counter))), nil
}

// Verify reports whether code matches the code for the current time window
// or one of its immediate neighbors, tolerating one window of clock skew in
// either direction. Each candidate comparison is constant-time. A malformed
// code never matches; it is not an error.
func Verify(secret, code string) (bool, error) {
	key, err := ParseKey(secret)
	if err != nil {
		return false, err
	}
	ctr := window(timeNow())
	windows := []uint64{ctr, ctr + 1}
	if ctr > 0 {
		windows = append(windows, ctr-1)
	}
	for _, c := range windows {
		want := format(truncate(hmacSHA1(key, c)))
		if subtle.ConstantTimeCompare([]byte(code), []byte(want)) == 1 {
			return true, nil
		}
	}
	return false, nil
}

// Remaining returns how long the current time window's code remains valid.
// Callers on cooperative runtimes that cannot afford the blocking wait in
// Generate can poll this and schedule their own delay.
func Remaining() time.Duration {
	return remaining(timeNow())
}

// ParseKey decodes a key encoded as base32, which is the typical format used
// by two-factor authentication setup tools. Lowercase letters, whitespace,
// and "=" padding are accepted and ignored; any other character outside A-Z
// and 2-7 is an error. Trailing bits short of a full byte are discarded, and
// an empty input decodes to an empty key.
func ParseKey(s string) ([]byte, error) {
	clean := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	key := make([]byte, 0, 5*len(clean)/8)

	// Fold each character's 5-bit value into an accumulator, emitting a byte
	// whenever 8 or more bits are buffered. The byte conversion masks off
	// bits already emitted.
	var acc, nbits uint
	for _, ch := range clean {
		var v uint
		switch {
		case ch == '=':
			continue
		case ch >= 'A' && ch <= 'Z':
			v = uint(ch - 'A')
		case ch >= '2' && ch <= '7':
			v = uint(ch-'2') + 26
		default:
			return nil, fmt.Errorf("%w: invalid base32 character %q", ErrInvalidSecret, ch)
		}
		acc = acc<<5 | v
		nbits += 5
		if nbits >= 8 {
			nbits -= 8
			key = append(key, byte(acc>>nbits))
		}
	}
	return key, nil
}

// window reports the number of Period-second intervals elapsed at t since
// the Unix epoch.
func window(t time.Time) uint64 { return uint64(t.Unix()) / Period }

// remaining reports the time left until the window containing t ends,
// rounded to whole seconds.
func remaining(t time.Time) time.Duration {
	return time.Duration(Period-t.Unix()%Period) * time.Second
}

// hmacSHA1 computes the RFC 4226 authentication tag: HMAC-SHA1 of the
// counter's 8-byte big-endian encoding under key.
func hmacSHA1(key []byte, counter uint64) []byte {
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], counter)
	h := hmac.New(sha1.New, key)
	h.Write(ctr[:])
	return h.Sum(nil)
}

// truncate extracts a 31-bit integer from digest using the dynamic
// truncation rule of RFC 4226: the low 4 bits of the final byte select the
// offset of a 4-byte big-endian value whose top bit is cleared.
func truncate(digest []byte) uint64 {
	offset := digest[len(digest)-1] & 0x0f
	code := (uint64(digest[offset]&0x7f) << 24) |
		(uint64(digest[offset+1]) << 16) |
		(uint64(digest[offset+2]) << 8) |
		(uint64(digest[offset+3]) << 0)
	return code
}

const padding = "000000"

// format renders code as a decimal string of exactly Digits characters,
// discarding higher-order digits and left-padding with zeros.
func format(code uint64) string {
	s := strconv.FormatUint(code, 10)
	if len(s) < Digits {
		s = padding[:Digits-len(s)] + s // left-pad with zeros
	}
	return s[len(s)-Digits:]
}
