//
// prg.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

package enclave

import (
	"crypto/rand"
	"encoding/binary"
	"math"

	"golang.org/x/crypto/chacha20"
)

// PRG is the enclave's pseudo-random generator. It drives routing-key
// assignment and the extraction shuffle. Seeds come from the
// operating system entropy source, never from input data.
type PRG struct {
	stream *chacha20.Cipher
}

// NewPRG creates a PRG with a fresh random seed.
func NewPRG() (*PRG, error) {
	seed := make([]byte, chacha20.KeySize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	return NewSeededPRG(seed)
}

// NewSeededPRG creates a PRG from an explicit seed. Deterministic
// seeding is for tests; production sorts use NewPRG.
func NewSeededPRG(seed []byte) (*PRG, error) {
	var nonce [chacha20.NonceSize]byte
	stream, err := chacha20.NewUnauthenticatedCipher(seed, nonce[:])
	if err != nil {
		return nil, err
	}
	return &PRG{
		stream: stream,
	}, nil
}

// Uint64 returns the next 64 keystream bits.
func (p *PRG) Uint64() uint64 {
	var buf [8]byte
	p.stream.XORKeyStream(buf[:], buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// Uint64n returns a uniform value in [0, n) without modulo bias.
func (p *PRG) Uint64n(n uint64) uint64 {
	if n == 0 {
		panic("prg: zero bound")
	}
	limit := math.MaxUint64 - math.MaxUint64%n
	for {
		v := p.Uint64()
		if v < limit {
			return v % n
		}
	}
}

// Shuffle performs a Fisher-Yates shuffle over n items.
func (p *PRG) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(p.Uint64n(uint64(i + 1)))
		swap(i, j)
	}
}
