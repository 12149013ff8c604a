// Package seed derives reproducible per-particle RNG seeds instead of
// relying on a process-wide RNG: hash a master seed together with a
// monotonic counter via SHA3-256 and fold the digest down to an int64
// usable with math/rand.NewSource.
package seed

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Derive returns the 256-bit key for the counter-th draw from master,
// the same way EpochKey derives a per-epoch AES key from a block hash
// and an epoch number.
func Derive(master int64, counter uint64) [32]byte {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(master))
	binary.LittleEndian.PutUint64(buf[8:], counter)

	h := sha3.New256()
	h.Write(buf[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Fold reduces a derived key to an int64 suitable for
// math/rand.NewSource, so a (master, counter) pair reproducibly
// determines an independent random stream.
func Fold(key [32]byte) int64 {
	return int64(binary.LittleEndian.Uint64(key[:8]))
}
