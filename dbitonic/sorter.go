//
// sorter.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

package dbitonic

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
)

// ErrShardCount reports a shard count that is not a power of two.
var ErrShardCount = errors.New("dbitonic: shard count must be a power of two")

// Sorter drives the distributed sort across N shards.
type Sorter struct {
	// Verbose enables progress output per local sort and per merge
	// phase.
	Verbose bool

	shards []*Shard
	local  func(s *Shard) error
}

// New creates a distributed sorter whose local phase is the
// standalone bitonic sort. The input is partitioned near-evenly: the
// remainder is spread over the first shards.
func New(rows []element.Row, shards int) (*Sorter, error) {
	s, err := newSorter(rows, shards)
	if err != nil {
		return nil, err
	}
	padded := s.paddedSize()
	s.local = func(sh *Shard) error {
		return sh.sortBitonic(padded)
	}
	return s, nil
}

// NewOblivious creates a distributed sorter whose local phase is the
// oblivious bucket sort with bucket capacity z, each shard against
// its own store.
func NewOblivious(rows []element.Row, shards, z int) (*Sorter, error) {
	s, err := newSorter(rows, shards)
	if err != nil {
		return nil, err
	}
	padded := s.paddedSize()
	s.local = func(sh *Shard) error {
		return sh.sortOblivious(padded, z)
	}
	return s, nil
}

func newSorter(rows []element.Row, shards int) (*Sorter, error) {
	if shards < 1 || shards&(shards-1) != 0 {
		return nil, ErrShardCount
	}

	per := len(rows) / shards
	rem := len(rows) % shards

	s := &Sorter{
		shards: make([]*Shard, shards),
	}
	var off int
	for i := 0; i < shards; i++ {
		count := per
		if i < rem {
			count++
		}
		s.shards[i] = &Shard{
			id:   i,
			rows: rows[off : off+count],
		}
		off += count
	}
	return s, nil
}

// paddedSize returns the common power-of-two run length: the largest
// partition rounded up.
func (s *Sorter) paddedSize() int {
	var max int
	for _, sh := range s.shards {
		if len(sh.rows) > max {
			max = len(sh.rows)
		}
	}
	padded := 1
	for padded < max {
		padded *= 2
	}
	return padded
}

// Debugf prints a progress message if verbose output is enabled.
func (s *Sorter) Debugf(format string, a ...interface{}) {
	if !s.Verbose {
		return
	}
	fmt.Printf(format, a...)
}

// Sort runs the local sorts in parallel, then the merge phases. The
// phases apply the bitonic sorting network at shard granularity: a
// comparator becomes a compare-split that merges two equal-length
// runs and keeps one half on each shard. Phase p merges bitonic
// sequences of 2^p shards; within a phase, partners differ in one
// index bit, stride halving per round. After the last phase the shard
// concatenation is globally sorted.
func (s *Sorter) Sort() error {
	var wg sync.WaitGroup
	errs := make([]error, len(s.shards))
	for i, sh := range s.shards {
		wg.Add(1)
		go func(i int, sh *Shard) {
			defer wg.Done()
			errs[i] = s.local(sh)
			s.Debugf("shard %s local sort complete, run length %d\n",
				sh.IDString(), len(sh.elems))
		}(i, sh)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	phases := bits.Len(uint(len(s.shards))) - 1
	for p, j := 1, 2; j <= len(s.shards); p, j = p+1, j*2 {
		for k := j / 2; k >= 1; k /= 2 {
			var wg sync.WaitGroup
			for i := 0; i < len(s.shards); i++ {
				partner := i ^ k
				if partner <= i {
					continue
				}
				wg.Add(1)
				go func(lo, hi int, ascending bool) {
					defer wg.Done()
					mergePair(s.shards[lo], s.shards[hi], ascending)
				}(i, partner, i&j == 0)
			}
			wg.Wait()
		}
		s.Debugf("merge phase %d of %d complete\n", p, phases)
	}
	return nil
}

// Result returns the globally sorted elements, dummies stripped.
func (s *Sorter) Result() []element.Element {
	var out []element.Element
	for _, sh := range s.shards {
		for _, el := range sh.elems {
			if !el.Dummy {
				out = append(out, el)
			}
		}
	}
	return out
}

// mergePair is the compare-split: it merges two sorted equal-length
// runs and keeps the lower half on the lower shard when ascending, on
// the higher shard otherwise. Dummies order above every real element,
// so they sink to the top of the lattice.
func mergePair(a, b *Shard, ascending bool) {
	merged := make([]element.Element, 0, len(a.elems)+len(b.elems))
	var i, j int
	for i < len(a.elems) && j < len(b.elems) {
		if less(b.elems[j], a.elems[i]) {
			merged = append(merged, b.elems[j])
			j++
		} else {
			merged = append(merged, a.elems[i])
			i++
		}
	}
	merged = append(merged, a.elems[i:]...)
	merged = append(merged, b.elems[j:]...)

	half := len(merged) / 2
	if ascending {
		a.elems = merged[:half:half]
		b.elems = merged[half:]
	} else {
		b.elems = merged[:half:half]
		a.elems = merged[half:]
	}
}

// less orders by sort key with dummies above every real element.
func less(x, y element.Element) bool {
	if x.Dummy != y.Dummy {
		return y.Dummy
	}
	return x.SortKey < y.SortKey
}
