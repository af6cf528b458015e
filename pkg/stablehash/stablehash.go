// Package stablehash provides deterministic, seed-based selection helpers.
//
// Narrative templates and similar pools need variety across competitors but
// byte-identical output for the same competitor and signal state, so all
// selection here is derived from SHA-256 of the seed rather than any random
// source.
package stablehash

import (
	"crypto/sha256"
	"encoding/binary"
)

// Index maps a seed string to a stable index in [0, n).
// Returns 0 when n <= 0.
func Index(seed string, n int) int {
	if n <= 0 {
		return 0
	}
	sum := sha256.Sum256([]byte(seed))
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Select picks one element of pool using the seed. Returns the zero value
// for an empty pool.
func Select[T any](seed string, pool []T) T {
	var zero T
	if len(pool) == 0 {
		return zero
	}
	return pool[Index(seed, len(pool))]
}

// Key returns a short hex digest of the concatenated parts, usable as a
// cache key or content-addressed path segment.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 0; i < 8; i++ {
		out[i*2] = hexdigits[sum[i]>>4]
		out[i*2+1] = hexdigits[sum[i]&0x0f]
	}
	return string(out)
}
