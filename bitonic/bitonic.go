//
// bitonic.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

// Package bitonic implements a data-independent comparator network
// for sorting power-of-two length element sequences. The sequence of
// compare-and-swap operations depends only on the length, never on
// the key values, which makes the network usable inside oblivious
// protocols.
package bitonic

import (
	"errors"
	"math"
	"math/bits"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
)

// ErrNotPowerOfTwo reports a sequence length the network cannot
// handle. Callers pad with dummies.
var ErrNotPowerOfTwo = errors.New("bitonic: sequence length must be a power of two")

// Key selects the comparison key of an element.
type Key func(e element.Element) int

// ByRoutingKey compares by the routing key. This is the crossbar key
// of merge-split.
func ByRoutingKey(e element.Element) int {
	return e.RoutingKey
}

// BySortKey compares by the semantic sort key.
func BySortKey(e element.Element) int {
	return e.SortKey
}

// BySortKeyDummiesLast compares by the semantic sort key with dummies
// ordered after every real element. Real elements with SortKey equal
// to math.MaxInt are indistinguishable from dummies under this key.
func BySortKeyDummiesLast(e element.Element) int {
	if e.Dummy {
		return math.MaxInt
	}
	return e.SortKey
}

// Compare is one compare-and-swap of the network schedule.
type Compare struct {
	I, J      int
	Ascending bool
}

// Sort sorts a in place by the chosen key and direction. The length
// of a must be a power of two.
func Sort(a []element.Element, key Key, ascending bool) error {
	n := len(a)
	if n&(n-1) != 0 {
		return ErrNotPowerOfTwo
	}
	network(0, n, ascending, func(i, j int, asc bool) {
		compareSwap(a, i, j, key, asc)
	})
	return nil
}

// Schedule returns the compare-and-swap schedule for a sequence of
// length n. The schedule is a function of n alone.
func Schedule(n int) ([]Compare, error) {
	if n&(n-1) != 0 {
		return nil, ErrNotPowerOfTwo
	}
	var out []Compare
	network(0, n, true, func(i, j int, asc bool) {
		out = append(out, Compare{I: i, J: j, Ascending: asc})
	})
	return out, nil
}

// network emits the comparator schedule of the recursive bitonic sort
// over [lo, lo+n).
func network(lo, n int, ascending bool, emit func(i, j int, ascending bool)) {
	if n <= 1 {
		return
	}
	k := n / 2
	network(lo, k, true, emit)
	network(lo+k, k, false, emit)
	bitonicMerge(lo, n, ascending, emit)
}

func bitonicMerge(lo, n int, ascending bool, emit func(i, j int, ascending bool)) {
	if n <= 1 {
		return
	}
	k := n / 2
	for i := lo; i < lo+k; i++ {
		emit(i, i+k, ascending)
	}
	bitonicMerge(lo, k, ascending, emit)
	bitonicMerge(lo+k, k, ascending, emit)
}

// compareSwap orders a[i] and a[j]. The swap decision is reduced to a
// single bit without branching on key values and both slots are
// rewritten on every call, so the timing and memory trace depend only
// on the schedule.
func compareSwap(a []element.Element, i, j int, key Key, ascending bool) {
	x := key(a[i])
	y := key(a[j])
	var swap int
	if ascending {
		swap = lessThan(y, x)
	} else {
		swap = lessThan(x, y)
	}
	sel := [2]element.Element{a[i], a[j]}
	a[i] = sel[swap]
	a[j] = sel[1-swap]
}

// lessThan returns 1 if a < b and 0 otherwise. The comparison is
// overflow-safe: when the signs differ the sign of a decides, when
// they agree the sign of a-b does.
func lessThan(a, b int) int {
	d := a - b
	s := (d &^ (a ^ b)) | (a & (a ^ b))
	return int(uint(s) >> (bits.UintSize - 1))
}
