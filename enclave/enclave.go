//
// enclave.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

// Package enclave implements the trusted side of the oblivious bucket
// sort. The enclave sees element values in the clear; the untrusted
// store observes only sealed buckets and the address stream, which is
// a function of the input length alone.
package enclave

import (
	"fmt"
	"sort"
	"time"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/bitonic"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/cipher"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/store"
)

// Enclave is the trusted compute domain of one sort. It owns a
// cryptographically seeded PRG and talks to the host only through
// sealed buckets.
type Enclave struct {
	// Verbose enables per-level progress output.
	Verbose bool

	store  store.Storage
	cipher cipher.Cipher
	prg    *PRG
	timing *Timing
}

// New creates an enclave over the given store and bucket cipher.
func New(st store.Storage, c cipher.Cipher) (*Enclave, error) {
	prg, err := NewPRG()
	if err != nil {
		return nil, err
	}
	return NewWithPRG(st, c, prg), nil
}

// NewWithPRG creates an enclave with an explicit PRG. Deterministic
// PRGs are for tests.
func NewWithPRG(st store.Storage, c cipher.Cipher, prg *PRG) *Enclave {
	return &Enclave{
		store:  st,
		cipher: c,
		prg:    prg,
		timing: NewTiming(),
	}
}

// Debugf prints a progress message if verbose output is enabled.
func (e *Enclave) Debugf(format string, a ...interface{}) {
	if !e.Verbose {
		return
	}
	fmt.Printf(format, a...)
}

// Timing returns the phase timing of the last Sort.
func (e *Enclave) Timing() *Timing {
	return e.timing
}

// Sort sorts the input rows by their key and returns the payloads in
// nondecreasing key order. The sequence of store accesses it produces
// depends only on len(rows) and z.
func (e *Enclave) Sort(rows []element.Row, z int) ([][]byte, error) {
	elems, err := e.SortElements(rows, z)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(elems))
	for i, el := range elems {
		out[i] = el.Payload
	}
	return out, nil
}

// SortElements is Sort without the final payload projection: it
// returns the extracted elements ordered by sort key. The distributed
// merger builds on it.
func (e *Enclave) SortElements(rows []element.Row, z int) ([]element.Element, error) {
	p, err := ComputeParams(len(rows), z)
	if err != nil {
		return nil, err
	}
	e.timing = NewTiming()

	if err := e.Initialize(rows, p); err != nil {
		return nil, err
	}
	e.timing.Sample("init", []string{fmt.Sprintf("%d buckets", p.B)})

	if err := e.Butterfly(p); err != nil {
		return nil, err
	}
	e.timing.Sample("shuffle", []string{fmt.Sprintf("%d levels", p.L)})

	elems, err := e.Extract(p)
	if err != nil {
		return nil, err
	}
	e.timing.Sample("extract", []string{fmt.Sprintf("%d elements", len(elems))})

	e.FinalSort(elems)
	e.timing.Sample("sort", nil)

	return elems, nil
}

// Initialize builds real elements with fresh routing keys, partitions
// them into B contiguous groups, pads each group to Z with dummies,
// and writes the sealed level-0 buckets. The initial placement is
// arbitrary; the routing keys do the mixing.
func (e *Enclave) Initialize(rows []element.Row, p Params) error {
	elems := make([]element.Element, len(rows))
	for i, r := range rows {
		elems[i] = element.Element{
			SortKey:    r.Key,
			RoutingKey: int(e.prg.Uint64n(uint64(p.B))),
			Payload:    r.Data,
		}
	}

	group := (len(rows) + p.B - 1) / p.B
	for i := 0; i < p.B; i++ {
		start := i * group
		end := start + group
		if start > len(elems) {
			start = len(elems)
		}
		if end > len(elems) {
			end = len(elems)
		}

		bucket := make(element.Bucket, 0, p.Z)
		bucket = append(bucket, elems[start:end]...)
		for len(bucket) < p.Z {
			bucket = append(bucket, element.NewDummy())
		}
		if err := e.writeBucket(0, i, bucket); err != nil {
			return err
		}
	}
	return nil
}

// Butterfly runs the L-level network of merge-splits. At level l
// buckets whose indices differ in bit L-1-l are paired, so after
// level l the top l+1 routing-key bits of every real element match
// its bucket index prefix.
func (e *Enclave) Butterfly(p Params) error {
	for level := 0; level < p.L; level++ {
		start := time.Now()
		stride := 1 << (p.L - 1 - level)

		for base := 0; base < p.B; base += 2 * stride {
			for j := 0; j < stride; j++ {
				lo := base + j
				hi := lo + stride

				in0, err := e.readBucket(level, lo)
				if err != nil {
					return err
				}
				in1, err := e.readBucket(level, hi)
				if err != nil {
					return err
				}

				out0, out1, err := e.mergeSplit(in0, in1, level, p)
				if err != nil {
					return err
				}

				if err := e.writeBucket(level+1, lo, out0); err != nil {
					return err
				}
				if err := e.writeBucket(level+1, hi, out1); err != nil {
					return err
				}
			}
		}
		e.timing.Level(level, time.Since(start))
		e.Debugf("level %d of %d complete\n", level+1, p.L)
	}
	return nil
}

// mergeSplit is the 2-in 2-out crossbar: it routes real elements by
// bit L-1-level of their routing key and fills the remaining capacity
// of each side with dummies. A single ascending bitonic sort by the
// re-encoded routing key places side 0 in the first Z slots.
func (e *Enclave) mergeSplit(in0, in1 element.Bucket, level int, p Params) (element.Bucket, element.Bucket, error) {
	bit := uint(p.L - 1 - level)

	combined := make(element.Bucket, 0, 2*p.Z)
	combined = append(combined, in0...)
	combined = append(combined, in1...)

	var count0, count1 int
	for _, el := range combined {
		if el.Dummy {
			continue
		}
		if (el.RoutingKey>>bit)&1 == 0 {
			count0++
		} else {
			count1++
		}
	}
	if count0 > p.Z || count1 > p.Z {
		return nil, nil, fmt.Errorf("%w: level %d, sides %d/%d, capacity %d",
			ErrOverflow, level, count0, count1, p.Z)
	}

	// Re-encode the routing key so that ascending order is: side-0
	// reals (0), side-0 dummies (1), side-1 reals (2), side-1
	// dummies (3). The original key is stashed and restored so later
	// levels see the unconsumed bits.
	need0 := p.Z - count0
	for i := range combined {
		el := &combined[i]
		el.StashRoutingKey()
		if el.Dummy {
			if need0 > 0 {
				el.RoutingKey = 1
				need0--
			} else {
				el.RoutingKey = 3
			}
		} else {
			el.RoutingKey = ((el.RoutingKey >> bit) & 1) << 1
		}
	}

	if err := bitonic.Sort(combined, bitonic.ByRoutingKey, true); err != nil {
		return nil, nil, err
	}

	for i := range combined {
		combined[i].RestoreRoutingKey()
	}

	return combined[:p.Z:p.Z], combined[p.Z:], nil
}

// Extract reads the final level, strips dummies, and shuffles the
// real elements inside the enclave so that extraction order cannot be
// correlated with input order. The shuffle is not visible to the
// host.
func (e *Enclave) Extract(p Params) ([]element.Element, error) {
	var out []element.Element
	for i := 0; i < p.B; i++ {
		bucket, err := e.readBucket(p.L, i)
		if err != nil {
			return nil, err
		}
		for _, el := range bucket {
			if !el.Dummy {
				out = append(out, el)
			}
		}
	}
	e.prg.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out, nil
}

// FinalSort orders the extracted elements by sort key. This runs over
// enclave-local memory and is deliberately a plain comparison sort.
func (e *Enclave) FinalSort(elems []element.Element) {
	sort.Slice(elems, func(i, j int) bool {
		return elems[i].SortKey < elems[j].SortKey
	})
}

func (e *Enclave) readBucket(level, index int) (element.Bucket, error) {
	sealed, err := e.store.ReadBucket(level, index)
	if err != nil {
		return nil, err
	}
	return e.cipher.Open(level, index, sealed)
}

func (e *Enclave) writeBucket(level, index int, b element.Bucket) error {
	sealed, err := e.cipher.Seal(level, index, b)
	if err != nil {
		return err
	}
	return e.store.WriteBucket(level, index, sealed)
}
