package draw

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/chacha20"
)

// DeriveKey combines the pool seed with the current entropy.
func DeriveKey(seed, entropy [32]byte) [32]byte {
	var buf [64]byte
	copy(buf[:32], seed[:])
	copy(buf[32:], entropy[:])
	return sha256.Sum256(buf[:])
}

// Rand is a deterministic generator reading the ChaCha20 keystream.
type Rand struct {
	stream *chacha20.Cipher
}

// NewRand keys a generator. Equal keys yield equal sequences.
func NewRand(key [32]byte) (*Rand, error) {
	var nonce [chacha20.NonceSize]byte
	stream, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create chacha20 stream: %w", err)
	}
	return &Rand{stream: stream}, nil
}

func (r *Rand) fill(p []byte) {
	clear(p)
	r.stream.XORKeyStream(p, p)
}

// Uint64 returns the next 64 keystream bits.
func (r *Rand) Uint64() uint64 {
	var buf [8]byte
	r.fill(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// Below returns a uniform value in [0, n). n must be non-zero.
func (r *Rand) Below(n uint256.Int) uint256.Int {
	if n.IsZero() {
		panic("draw: Below called with zero bound")
	}
	shift := uint(256 - n.BitLen())
	var buf [32]byte
	var v uint256.Int
	for {
		r.fill(buf[:])
		v.SetBytes32(buf[:])
		v.Rsh(&v, shift)
		if v.Lt(&n) {
			return v
		}
	}
}
