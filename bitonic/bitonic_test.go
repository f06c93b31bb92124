//
// bitonic_test.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

package bitonic

import (
	"math/rand"
	"testing"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
)

func makeElements(keys []int) []element.Element {
	elems := make([]element.Element, len(keys))
	for i, k := range keys {
		elems[i] = element.Element{
			SortKey:    k,
			RoutingKey: k,
		}
	}
	return elems
}

func TestSortAscending(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, n := range []int{1, 2, 4, 8, 64, 256} {
		keys := make([]int, n)
		for i := range keys {
			keys[i] = rng.Intn(1000) - 500
		}
		elems := makeElements(keys)

		if err := Sort(elems, BySortKey, true); err != nil {
			t.Fatalf("Sort: %s", err)
		}
		for i := 1; i < len(elems); i++ {
			if elems[i].SortKey < elems[i-1].SortKey {
				t.Errorf("n=%d: position %d out of order", n, i)
			}
		}
	}
}

func TestSortDescending(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	keys := make([]int, 128)
	for i := range keys {
		keys[i] = rng.Intn(1000)
	}
	elems := makeElements(keys)

	if err := Sort(elems, ByRoutingKey, false); err != nil {
		t.Fatalf("Sort: %s", err)
	}
	for i := 1; i < len(elems); i++ {
		if elems[i].RoutingKey > elems[i-1].RoutingKey {
			t.Errorf("position %d out of order", i)
		}
	}
}

func TestSortNotPowerOfTwo(t *testing.T) {
	for _, n := range []int{3, 5, 6, 7, 100} {
		elems := make([]element.Element, n)
		if err := Sort(elems, BySortKey, true); err != ErrNotPowerOfTwo {
			t.Errorf("n=%d: expected ErrNotPowerOfTwo, got %v", n, err)
		}
	}
}

func TestSortPreservesElements(t *testing.T) {
	keys := []int{3, 1, 4, 1, 5, 9, 2, 6}
	elems := makeElements(keys)
	for i := range elems {
		elems[i].Payload = []byte{byte(i)}
	}

	if err := Sort(elems, BySortKey, true); err != nil {
		t.Fatalf("Sort: %s", err)
	}

	seen := make(map[byte]int)
	for _, e := range elems {
		seen[e.Payload[0]]++
		if e.SortKey != keys[e.Payload[0]] {
			t.Errorf("payload %d detached from its key", e.Payload[0])
		}
	}
	for i := 0; i < len(keys); i++ {
		if seen[byte(i)] != 1 {
			t.Errorf("payload %d appears %d times", i, seen[byte(i)])
		}
	}
}

func TestDummiesLast(t *testing.T) {
	elems := []element.Element{
		{Dummy: true},
		{SortKey: 9},
		{Dummy: true},
		{SortKey: -3},
	}
	if err := Sort(elems, BySortKeyDummiesLast, true); err != nil {
		t.Fatalf("Sort: %s", err)
	}
	want := []bool{false, false, true, true}
	for i, e := range elems {
		if e.Dummy != want[i] {
			t.Fatalf("dummy at position %d: %v", i, e.Dummy)
		}
	}
	if elems[0].SortKey != -3 || elems[1].SortKey != 9 {
		t.Errorf("real elements out of order: %d, %d",
			elems[0].SortKey, elems[1].SortKey)
	}
}

// TestScheduleDeterminism checks that the compare-and-swap schedule
// is a function of the sequence length alone.
func TestScheduleDeterminism(t *testing.T) {
	for _, n := range []int{1, 2, 8, 32, 128} {
		first, err := Schedule(n)
		if err != nil {
			t.Fatalf("Schedule(%d): %s", n, err)
		}
		second, err := Schedule(n)
		if err != nil {
			t.Fatalf("Schedule(%d): %s", n, err)
		}
		if len(first) != len(second) {
			t.Fatalf("n=%d: schedule lengths differ", n)
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("n=%d: compare %d differs", n, i)
			}
		}
		for _, c := range first {
			if c.I < 0 || c.J >= n || c.I >= c.J {
				t.Errorf("n=%d: bad compare %+v", n, c)
			}
		}
	}
}

func TestScheduleSize(t *testing.T) {
	// n/2 * log(n) * (log(n)+1) / 2 compares for the full network.
	for _, tc := range []struct {
		n    int
		want int
	}{
		{1, 0},
		{2, 1},
		{4, 6},
		{8, 24},
		{16, 80},
	} {
		sched, err := Schedule(tc.n)
		if err != nil {
			t.Fatalf("Schedule(%d): %s", tc.n, err)
		}
		if len(sched) != tc.want {
			t.Errorf("n=%d: %d compares, expected %d",
				tc.n, len(sched), tc.want)
		}
	}
}

func TestLessThan(t *testing.T) {
	const maxInt = int(^uint(0) >> 1)
	const minInt = -maxInt - 1

	for _, tc := range []struct {
		a, b int
		want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{1, 0, 0},
		{-1, 0, 1},
		{0, -1, 0},
		{-5, -4, 1},
		{minInt, maxInt, 1},
		{maxInt, minInt, 0},
		{minInt, minInt, 0},
		{maxInt, maxInt, 0},
	} {
		if got := lessThan(tc.a, tc.b); got != tc.want {
			t.Errorf("lessThan(%d, %d) = %d, expected %d",
				tc.a, tc.b, got, tc.want)
		}
	}
}

func BenchmarkSort(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	elems := make([]element.Element, 1024)
	for i := range elems {
		elems[i] = element.Element{SortKey: rng.Int()}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sort(elems, BySortKey, true)
	}
}
