//
// memory.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

package store

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/Tonyavall/hardware-enclaves-doblivious-sort/element"
)

// IOStats counts bucket transfers across the enclave boundary.
type IOStats struct {
	Reads  *atomic.Uint64
	Writes *atomic.Uint64
}

// NewIOStats creates a new I/O statistics object.
func NewIOStats() IOStats {
	return IOStats{
		Reads:  new(atomic.Uint64),
		Writes: new(atomic.Uint64),
	}
}

// Add returns the sum of this IOStats and the argument stats. Neither
// operand is modified.
func (stats IOStats) Add(o IOStats) IOStats {
	reads := new(atomic.Uint64)
	reads.Store(stats.Reads.Load() + o.Reads.Load())

	writes := new(atomic.Uint64)
	writes.Store(stats.Writes.Load() + o.Writes.Load())

	return IOStats{
		Reads:  reads,
		Writes: writes,
	}
}

// Sum returns the total number of bucket transfers.
func (stats IOStats) Sum() uint64 {
	return stats.Reads.Load() + stats.Writes.Load()
}

type addr struct {
	level int
	index int
}

// Memory is an in-process host simulation. One Memory backs one sort;
// it is created empty and discarded afterwards. Merge-split pairs
// within a level may access it concurrently; the log stays totally
// ordered under a single lock.
type Memory struct {
	m       sync.Mutex
	buckets map[addr]element.Bucket
	log     []Access
	stats   IOStats
}

// NewMemory creates an empty host memory.
func NewMemory() *Memory {
	return &Memory{
		buckets: make(map[addr]element.Bucket),
		stats:   NewIOStats(),
	}
}

// ReadBucket returns a copy of the bucket at (level, index). The
// access is logged even when the address was never written.
func (mem *Memory) ReadBucket(level, index int) (element.Bucket, error) {
	mem.m.Lock()
	defer mem.m.Unlock()

	b, ok := mem.buckets[addr{level, index}]
	mem.log = append(mem.log, Access{
		Op:     OpRead,
		Level:  level,
		Index:  index,
		Size:   len(b),
		Render: render(b),
		Digest: digest(b),
	})
	mem.stats.Reads.Add(1)

	if !ok {
		return nil, ErrNotWritten
	}
	return b.Clone(), nil
}

// WriteBucket stores a copy of the bucket at (level, index).
func (mem *Memory) WriteBucket(level, index int, b element.Bucket) error {
	mem.m.Lock()
	defer mem.m.Unlock()

	mem.buckets[addr{level, index}] = b.Clone()
	mem.log = append(mem.log, Access{
		Op:     OpWrite,
		Level:  level,
		Index:  index,
		Size:   len(b),
		Render: render(b),
		Digest: digest(b),
	})
	mem.stats.Writes.Add(1)

	return nil
}

// Accesses returns a copy of the access log in issue order.
func (mem *Memory) Accesses() []Access {
	mem.m.Lock()
	defer mem.m.Unlock()

	log := make([]Access, len(mem.log))
	copy(log, mem.log)
	return log
}

// Stats returns the bucket transfer counters.
func (mem *Memory) Stats() IOStats {
	return mem.stats
}

// digest hashes the stored representation of a bucket. Log consumers
// use it to compare bucket contents without keeping full copies.
func digest(b element.Bucket) uint64 {
	d := xxhash.New()

	var buf [8]byte
	for _, e := range b {
		binary.LittleEndian.PutUint64(buf[:], uint64(e.SortKey))
		d.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(e.RoutingKey))
		d.Write(buf[:])
		if e.Dummy {
			d.Write([]byte{1})
		} else {
			d.Write([]byte{0})
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(len(e.Payload)))
		d.Write(buf[:])
		d.Write(e.Payload)
	}
	return d.Sum64()
}
