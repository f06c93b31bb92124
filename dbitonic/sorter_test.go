//
// sorter_test.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

package dbitonic

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
)

func makeRows(keys []int) []element.Row {
	rows := make([]element.Row, len(keys))
	for i, k := range keys {
		rows[i] = element.Row{
			Key:  k,
			Data: []byte(fmt.Sprintf("row-%d-%d", i, k)),
		}
	}
	return rows
}

func TestSortScenario(t *testing.T) {
	// 8 values over 4 shards: after the local sorts the shards hold
	// [7 8] [5 6] [3 4] [1 2]; two merge phases (three compare-split
	// rounds) produce the global order.
	keys := []int{8, 7, 6, 5, 4, 3, 2, 1}

	s, err := New(makeRows(keys), 4)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	if err := s.Sort(); err != nil {
		t.Fatalf("Sort: %s", err)
	}

	result := s.Result()
	if len(result) != len(keys) {
		t.Fatalf("%d elements, expected %d", len(result), len(keys))
	}
	for i, el := range result {
		if el.SortKey != i+1 {
			t.Errorf("position %d: key %d, expected %d", i, el.SortKey, i+1)
		}
	}
}

func TestSortRounds(t *testing.T) {
	keys := []int{8, 7, 6, 5, 4, 3, 2, 1}

	s, err := New(makeRows(keys), 4)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	if err := s.Sort(); err != nil {
		t.Fatalf("Sort: %s", err)
	}

	// After the final round shard i holds values 2i+1, 2i+2.
	for i, sh := range s.shards {
		var reals []int
		for _, el := range sh.elems {
			if !el.Dummy {
				reals = append(reals, el.SortKey)
			}
		}
		if len(reals) != 2 || reals[0] != 2*i+1 || reals[1] != 2*i+2 {
			t.Errorf("shard %d holds %v", i, reals)
		}
	}
}

func TestShardCount(t *testing.T) {
	rows := makeRows([]int{1, 2, 3})
	for _, n := range []int{0, 3, 5, 6, -1} {
		if _, err := New(rows, n); err != ErrShardCount {
			t.Errorf("shards=%d: expected ErrShardCount, got %v", n, err)
		}
	}
	if _, err := New(rows, 1); err != nil {
		t.Errorf("shards=1: %s", err)
	}
}

func TestUnevenPartitions(t *testing.T) {
	// 10 rows over 4 shards: partitions of 3, 3, 2, 2 padded to a
	// common run length of 4.
	rng := rand.New(rand.NewSource(3))
	keys := make([]int, 10)
	for i := range keys {
		keys[i] = rng.Intn(100)
	}

	s, err := New(makeRows(keys), 4)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	for i, want := range []int{3, 3, 2, 2} {
		if len(s.shards[i].rows) != want {
			t.Errorf("shard %d has %d rows, expected %d",
				i, len(s.shards[i].rows), want)
		}
	}
	if got := s.paddedSize(); got != 4 {
		t.Errorf("padded size %d, expected 4", got)
	}

	if err := s.Sort(); err != nil {
		t.Fatalf("Sort: %s", err)
	}
	result := s.Result()
	if len(result) != len(keys) {
		t.Fatalf("%d elements, expected %d", len(result), len(keys))
	}
	for i := 1; i < len(result); i++ {
		if result[i].SortKey < result[i-1].SortKey {
			t.Errorf("position %d out of order", i)
		}
	}
}

// TestDistributedEquivalence checks that the distributed sorter
// returns a sorted permutation of the input, the key sequence a plain
// sort yields, for 1, 2, 4 and 8 shards with both local sort variants.
func TestDistributedEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	keys := make([]int, 50)
	for i := range keys {
		keys[i] = rng.Intn(1000) - 500
	}
	rows := makeRows(keys)

	for _, shards := range []int{1, 2, 4, 8} {
		for _, oblivious := range []bool{false, true} {
			var s *Sorter
			var err error
			if oblivious {
				s, err = NewOblivious(rows, shards, 32)
			} else {
				s, err = New(rows, shards)
			}
			if err != nil {
				t.Fatalf("shards=%d: %s", shards, err)
			}
			if err := s.Sort(); err != nil {
				t.Fatalf("shards=%d oblivious=%v: Sort: %s",
					shards, oblivious, err)
			}

			result := s.Result()
			if len(result) != len(keys) {
				t.Fatalf("shards=%d oblivious=%v: %d elements",
					shards, oblivious, len(result))
			}
			for i := 1; i < len(result); i++ {
				if result[i].SortKey < result[i-1].SortKey {
					t.Errorf("shards=%d oblivious=%v: position %d out of order",
						shards, oblivious, i)
				}
			}

			input := make(map[string]int)
			for _, r := range rows {
				input[string(r.Data)]++
			}
			for _, el := range result {
				input[string(el.Payload)]--
			}
			for payload, count := range input {
				if count != 0 {
					t.Errorf("shards=%d oblivious=%v: payload %q off by %d",
						shards, oblivious, payload, count)
				}
			}
		}
	}
}

func TestEmptyInput(t *testing.T) {
	s, err := New(nil, 4)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	if err := s.Sort(); err != nil {
		t.Fatalf("Sort: %s", err)
	}
	if result := s.Result(); len(result) != 0 {
		t.Fatalf("%d elements, expected 0", len(result))
	}
}

func TestIDString(t *testing.T) {
	s, err := New(makeRows([]int{1, 2}), 2)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	if s.shards[0].IDString() == s.shards[1].IDString() {
		t.Errorf("shard IDs render identically")
	}
}
