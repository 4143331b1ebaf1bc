// Package digest provides the fixed width hashing function used by the
// blockchain for transactions, merkle nodes and block headers.
package digest

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"hash"
	"math/bits"
	"strings"
)

// Size is the number of bytes produced by the digest function.
const Size = 32

// ZeroHash represents a hash code of zeros. It is used as the previous hash
// of the genesis block.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// Initial state for the four 32 bit lanes.
const (
	seed0 uint32 = 0x6a09e667
	seed1 uint32 = 0xbb67ae85
	seed2 uint32 = 0x3c6ef372
	seed3 uint32 = 0xa54ff53a
)

// Per lane multipliers.
const (
	mul0 uint32 = 0x85ebca6b
	mul1 uint32 = 0xc2b2ae35
	mul2 uint32 = 0x27d4eb2f
	mul3 uint32 = 0x165667b1
)

// =============================================================================

// Sum returns the digest of the data. This is the hot path for mining and
// performs no allocations.
func Sum(data []byte) [Size]byte {
	var s state
	s.reset()
	s.write(data)
	return s.sum()
}

// Hex returns the hex encoded digest of the data.
func Hex(data []byte) string {
	sum := Sum(data)
	return hex.EncodeToString(sum[:])
}

// String returns the hex encoded digest of the string.
func String(s string) string {
	return Hex([]byte(s))
}

// Value returns the hex encoded digest of the JSON representation of
// the value.
func Value(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	return Hex(data), nil
}

// HasLeadingZeros reports whether the hex form of the sum starts with the
// specified number of '0' characters. The check runs against the raw bytes
// so a miner only hex encodes a sum once it has found a solution.
func HasLeadingZeros(sum [Size]byte, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if difficulty > Size*2 {
		return false
	}

	full := difficulty / 2
	for i := range full {
		if sum[i] != 0 {
			return false
		}
	}

	if difficulty%2 == 1 {
		return sum[full]>>4 == 0
	}

	return true
}

// MeetsDifficulty checks the hex encoded hash has the number of leading
// '0' characters required by the difficulty.
func MeetsDifficulty(hash string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if len(hash) < difficulty {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == difficulty
}

// =============================================================================

// New returns a hash.Hash computing the digest. It allows the digest to be
// used as a merkle tree hash strategy.
func New() hash.Hash {
	var d digest
	d.Reset()
	return &d
}

type digest struct {
	s state
}

// Write adds more data to the running hash. It never returns an error.
func (d *digest) Write(p []byte) (int, error) {
	d.s.write(p)
	return len(p), nil
}

// Sum appends the current hash to b and returns the resulting slice. It
// does not change the underlying hash state.
func (d *digest) Sum(b []byte) []byte {
	sum := d.s.sum()
	return append(b, sum[:]...)
}

// Reset resets the Hash to its initial state.
func (d *digest) Reset() {
	d.s.reset()
}

// Size returns the number of bytes Sum will return.
func (d *digest) Size() int {
	return Size
}

// BlockSize returns the hash's underlying block size. The digest consumes
// a single byte at a time.
func (d *digest) BlockSize() int {
	return 1
}

// =============================================================================

// state holds the four mixing lanes. Every byte updates all lanes and each
// lane folds in its neighbour so a change in any byte reaches every word.
type state struct {
	h0, h1, h2, h3 uint32
}

func (s *state) reset() {
	s.h0, s.h1, s.h2, s.h3 = seed0, seed1, seed2, seed3
}

func (s *state) write(p []byte) {
	h0, h1, h2, h3 := s.h0, s.h1, s.h2, s.h3

	for _, b := range p {
		c := uint32(b)

		h0 = (h0 ^ c) * mul0
		h1 = (h1 ^ c) * mul1
		h2 = (h2 ^ c) * mul2
		h3 = (h3 ^ c) * mul3

		h0 = bits.RotateLeft32(h0, 13) ^ h1
		h1 = bits.RotateLeft32(h1, 17) ^ h2
		h2 = bits.RotateLeft32(h2, 5) ^ h3
		h3 = bits.RotateLeft32(h3, 23) ^ h0
	}

	s.h0, s.h1, s.h2, s.h3 = h0, h1, h2, h3
}

func (s *state) sum() [Size]byte {
	h0 := (s.h0 ^ (s.h0 >> 16)) * mul0
	h1 := (s.h1 ^ (s.h1 >> 13)) * mul1
	h2 := (s.h2 ^ (s.h2 >> 16)) * mul2
	h3 := (s.h3 ^ (s.h3 >> 13)) * mul3

	words := [8]uint32{h0, h1, h2, h3, h0 ^ h1, h2 ^ h3, h0 ^ h2, h1 ^ h3}

	var out [Size]byte
	for i, w := range words {
		binary.BigEndian.PutUint32(out[i*4:], w)
	}

	return out
}
