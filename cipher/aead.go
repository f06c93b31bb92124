//
// aead.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

package cipher

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
)

// elemHeader is the fixed prefix of an encoded element: sort key,
// routing key, and the dummy tag.
const elemHeader = 8 + 8 + 1

// AEAD encrypts whole elements with ChaCha20-Poly1305. Nonces are
// derived from (level, index, slot), so a key must be scoped to a
// single sort: every address is written at most once per sort.
type AEAD struct {
	aead cipher.AEAD
}

// NewKey draws a fresh sort-scoped key.
func NewKey() ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// NewAEAD creates an authenticated bucket cipher with the given
// sort-scoped key.
func NewAEAD(key []byte) (*AEAD, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: %s", err)
	}
	return &AEAD{
		aead: aead,
	}, nil
}

// Seal encrypts every element of the bucket, dummies included, so the
// host cannot tell padding from data.
func (c *AEAD) Seal(level, index int, b element.Bucket) (element.Bucket, error) {
	out := make(element.Bucket, len(b))
	for i, e := range b {
		nonce := makeNonce(level, index, i)
		out[i] = element.Element{
			Payload: c.aead.Seal(nil, nonce, encodeElement(e), nil),
		}
	}
	return out, nil
}

// Open decrypts every element of the bucket.
func (c *AEAD) Open(level, index int, b element.Bucket) (element.Bucket, error) {
	out := make(element.Bucket, len(b))
	for i, e := range b {
		nonce := makeNonce(level, index, i)
		pt, err := c.aead.Open(nil, nonce, e.Payload, nil)
		if err != nil {
			return nil, ErrDecrypt
		}
		dec, err := decodeElement(pt)
		if err != nil {
			return nil, ErrDecrypt
		}
		out[i] = dec
	}
	return out, nil
}

// makeNonce packs the bucket address and slot into a nonce.
func makeNonce(level, index, slot int) []byte {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.LittleEndian.PutUint32(nonce[0:4], uint32(level))
	binary.LittleEndian.PutUint32(nonce[4:8], uint32(index))
	binary.LittleEndian.PutUint32(nonce[8:12], uint32(slot))
	return nonce
}

func encodeElement(e element.Element) []byte {
	buf := make([]byte, elemHeader+len(e.Payload))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(e.SortKey))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(e.RoutingKey))
	if e.Dummy {
		buf[16] = 1
	}
	copy(buf[elemHeader:], e.Payload)
	return buf
}

func decodeElement(buf []byte) (element.Element, error) {
	if len(buf) < elemHeader {
		return element.Element{}, ErrDecrypt
	}
	e := element.Element{
		SortKey:    int(int64(binary.LittleEndian.Uint64(buf[0:8]))),
		RoutingKey: int(int64(binary.LittleEndian.Uint64(buf[8:16]))),
		Dummy:      buf[16] == 1,
	}
	if len(buf) > elemHeader {
		e.Payload = make([]byte, len(buf)-elemHeader)
		copy(e.Payload, buf[elemHeader:])
	}
	return e, nil
}
