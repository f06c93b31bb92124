//
// shard.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

// Package dbitonic composes several independent enclaves into one
// larger sort. Each shard sorts its partition locally, then the
// bitonic sorting network, applied at shard granularity with
// compare-split merges, exchanges sorted halves between shard pairs.
// Only the per-shard phase is oblivious; the merge phases compare
// sort keys directly.
package dbitonic

import (
	"github.com/markkurossi/text/superscript"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/bitonic"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/cipher"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/enclave"
	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/store"
)

// Shard holds one partition of the input: after the local phase, a
// sorted run padded to the common power-of-two length with dummies at
// the high end.
type Shard struct {
	id    int
	rows  []element.Row
	elems []element.Element
}

// IDString returns the shard ID as string.
func (s *Shard) IDString() string {
	return superscript.Itoa(s.id)
}

// sortBitonic runs the standalone bitonic sort over the padded
// partition. The whole local phase is data-independent.
func (s *Shard) sortBitonic(padded int) error {
	elems := make([]element.Element, 0, padded)
	for _, r := range s.rows {
		elems = append(elems, element.Element{
			SortKey: r.Key,
			Payload: r.Data,
		})
	}
	for len(elems) < padded {
		elems = append(elems, element.NewDummy())
	}
	err := bitonic.Sort(elems, bitonic.BySortKeyDummiesLast, true)
	if err != nil {
		return err
	}
	s.elems = elems
	return nil
}

// sortOblivious runs an oblivious bucket sort over the shard's own
// store and pads the sorted run afterwards. Dummies at the high end
// keep the run sorted under the dummies-last order.
func (s *Shard) sortOblivious(padded, z int) error {
	enc, err := enclave.New(store.NewMemory(), cipher.Mask{})
	if err != nil {
		return err
	}
	elems, err := enc.SortElements(s.rows, z)
	if err != nil {
		return err
	}
	for len(elems) < padded {
		elems = append(elems, element.NewDummy())
	}
	s.elems = elems
	return nil
}
