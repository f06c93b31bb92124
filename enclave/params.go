//
// params.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

package enclave

import (
	"errors"
	"math/bits"
)

var (
	// ErrBucketSize reports a bucket capacity that cannot hold the
	// input even before random routing.
	ErrBucketSize = errors.New("enclave: bucket size too small for input size")

	// ErrBucketPow2 reports a bucket capacity the bitonic crossbar
	// cannot handle: merge-split sorts 2Z elements, so Z must be a
	// power of two.
	ErrBucketPow2 = errors.New("enclave: bucket size must be a power of two")

	// ErrOverflow reports a merge-split whose random routing sent
	// more than Z real elements to one side. The caller may retry
	// with a larger bucket size or a fresh seed.
	ErrOverflow = errors.New("enclave: bucket overflow in merge-split")
)

// Params captures the bucket geometry of one oblivious sort.
type Params struct {
	N int // input rows
	Z int // bucket capacity
	B int // bucket count, power of two
	L int // butterfly levels, log2(B)
}

// ComputeParams derives the bucket count and level count for n input
// rows and bucket capacity z. It fails before any store access when
// the capacity bound n <= B*(Z/2) cannot hold.
func ComputeParams(n, z int) (Params, error) {
	if z < 1 || z&(z-1) != 0 {
		return Params{}, ErrBucketPow2
	}

	required := (2*n + z - 1) / z
	b := 1
	for b < required {
		b *= 2
	}
	if n > b*(z/2) {
		return Params{}, ErrBucketSize
	}

	return Params{
		N: n,
		Z: z,
		B: b,
		L: bits.Len(uint(b)) - 1,
	}, nil
}
