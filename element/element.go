//
// element.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

// Package element defines the unit of storage moved through the sort
// pipeline: real records carrying a semantic sort key and an opaque
// payload, and dummy placeholders used to pad buckets to fixed
// capacity.
package element

// Element is one slot of a bucket. Real elements carry an input row;
// dummies exist only to keep bucket sizes fixed and are discarded at
// extraction.
type Element struct {
	// SortKey is the semantic ordering key. The oblivious shuffle
	// never looks at it; only the final in-enclave sort does.
	SortKey int

	// RoutingKey drives the butterfly network. It is drawn uniformly
	// from [0, B) at initialisation and decides the element's final
	// bucket.
	RoutingKey int

	// Payload is the original record. It moves with the element and
	// is never inspected.
	Payload []byte

	// Dummy marks padding elements.
	Dummy bool

	// stash holds the full routing key while RoutingKey carries a
	// crossbar code during merge-split.
	stash int
}

// Row is one input record: the semantic key and the opaque payload.
type Row struct {
	Key  int
	Data []byte
}

// NewDummy returns a padding element.
func NewDummy() Element {
	return Element{Dummy: true}
}

// StashRoutingKey saves the routing key so that merge-split can
// overwrite RoutingKey with a crossbar code and restore the original
// bits afterwards.
func (e *Element) StashRoutingKey() {
	e.stash = e.RoutingKey
}

// RestoreRoutingKey restores the routing key saved by
// StashRoutingKey.
func (e *Element) RestoreRoutingKey() {
	e.RoutingKey = e.stash
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	c := e
	if e.Payload != nil {
		c.Payload = make([]byte, len(e.Payload))
		copy(c.Payload, e.Payload)
	}
	return c
}

// Bucket is an ordered sequence of elements. During a sort every
// bucket holds exactly Z elements.
type Bucket []Element

// Clone returns a deep copy of the bucket. Buckets crossing the
// enclave boundary must not alias.
func (b Bucket) Clone() Bucket {
	if b == nil {
		return nil
	}
	c := make(Bucket, len(b))
	for i, e := range b {
		c[i] = e.Clone()
	}
	return c
}
