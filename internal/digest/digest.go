// Package digest collapses an output vector into the hex credential string
// compared on every login.
//
// The float rendering is part of the stored-credential contract: changing it
// invalidates every digest already issued.
package digest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
)

// Size is the length of a digest string in hex characters.
const Size = sha256.Size * 2

// FormatFloat renders v with the shortest decimal digits that round-trip.
// Values whose decimal exponent lies in [-4, 16) use fixed notation with at
// least one fractional digit; the rest use d.ddde±XX.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.LastIndexByte(sci, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return sci
	}

	fixed := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}
	return fixed
}

// Reduce hashes the concatenated renderings of outputs, in order and without
// separators, and returns the lowercase hex SHA-256.
func Reduce(outputs []float64) string {
	h := sha256.New()
	buf := make([]byte, 0, 32)
	for _, v := range outputs {
		buf = append(buf[:0], FormatFloat(v)...)
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Equal compares two digests in time independent of where they differ.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Valid reports whether s has the shape of a digest.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
