//
// cipher.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

// Package cipher is the seam where buckets are protected before they
// cross to the untrusted store. The reference Mask cipher only marks
// the seam; AEAD is the substitution a real deployment makes.
package cipher

import (
	"errors"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
)

// ErrDecrypt reports a bucket that decryption rejected. The error
// deliberately does not say which slot failed.
var ErrDecrypt = errors.New("cipher: bucket decryption failed")

// Cipher transforms buckets as they cross the enclave boundary.
// Open must invert Seal on real elements.
type Cipher interface {
	// Seal protects a bucket for storage at (level, index).
	Seal(level, index int, b element.Bucket) (element.Bucket, error)

	// Open recovers a bucket read from (level, index).
	Open(level, index int, b element.Bucket) (element.Bucket, error)
}

// maskKey is the fixed XOR constant of the reference masking cipher.
const maskKey = 0xdeadbeef

// Mask is the reference placeholder cipher: it XOR-masks the sort and
// routing keys of real elements and passes dummies through unchanged.
// It provides no secrecy and exists to mark where authenticated
// encryption sits.
type Mask struct{}

// Seal masks the bucket.
func (Mask) Seal(level, index int, b element.Bucket) (element.Bucket, error) {
	return maskBucket(b), nil
}

// Open unmasks the bucket.
func (Mask) Open(level, index int, b element.Bucket) (element.Bucket, error) {
	return maskBucket(b), nil
}

// maskBucket is its own inverse.
func maskBucket(b element.Bucket) element.Bucket {
	out := b.Clone()
	for i := range out {
		if out[i].Dummy {
			continue
		}
		out[i].SortKey ^= maskKey
		out[i].RoutingKey ^= maskKey
	}
	return out
}
