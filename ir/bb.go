// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

// State is where a block stands in the linearisation pass
// (spec.md §4.2). Linearise sets Emitting and then Emitted as it places
// each block; a block not yet placed is NotEmitted.
type State int

const (
	NotEmitted State = iota
	Emitting
	Emitted
)

// linksCapacity reproduces GetBBLinksCapacity from the source
// compiler: the first two edges get an exactly-sized backing array
// (capacity 1, then 2), and from the third edge on the array grows to
// the next power of two at or above the edge count, so 3 edges get
// capacity 4, 5 edges get capacity 8, and so on. This is deliberately
// not Go's append doubling-from-whatever-cap behaviour, which is why
// BB manages its In/Out arrays by hand instead of using plain append
// (SPEC_FULL.md §5).
func linksCapacity(n int) int {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return 1
	case n == 2:
		return 2
	}
	cap := 4
	for cap < n {
		cap *= 2
	}
	return cap
}

// edgeList is a manually capacity-managed array of *BB, used for both
// a block's In and Out edges.
type edgeList struct {
	items []*BB
}

func (e *edgeList) add(b *BB) {
	n := len(e.items) + 1
	if cap(e.items) < linksCapacity(n) {
		grown := make([]*BB, len(e.items), linksCapacity(n))
		copy(grown, e.items)
		e.items = grown
	}
	e.items = append(e.items, b)
}

// remove deletes the first occurrence of b, if any, preserving order
// of the remaining edges (LinkBBs/UnlinkBBs never need a fast
// unordered remove — block counts per node are small).
func (e *edgeList) remove(b *BB) {
	for i, v := range e.items {
		if v == b {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return
		}
	}
}

// BB is a basic block: a straight-line run of instructions with a
// single entry and a single set of successors (spec.md §4.2).
type BB struct {
	Index        int32
	ILOffset     int32 // IL offset of the block's first instruction
	NativeOffset int32 // filled in by ComputeCodeSize / EmitCode

	// StackHeight is -1 until the block has been reached by the
	// importer at least once; StackState is the snapshot of the
	// evaluation stack's shape at block entry used to reconcile
	// different arrival paths (spec.md §4.1.4).
	StackHeight int32
	StackState  []StackInfo

	First, Last *Ins // doubly-linked instruction list

	// Next is the block's successor in final layout order (the order
	// blocks are written into the instruction stream), distinct from
	// the CFG edges below. It mirrors pNextBB in the source compiler.
	Next *BB

	in, out edgeList

	EmitState State
}

// In returns this block's predecessor edges.
func (b *BB) In() []*BB { return b.in.items }

// Out returns this block's successor edges.
func (b *BB) Out() []*BB { return b.out.items }

// AppendIns links ins onto the end of the block's instruction list.
func (b *BB) AppendIns(ins *Ins) {
	ins.Prev = b.Last
	ins.Next = nil
	if b.Last != nil {
		b.Last.Next = ins
	} else {
		b.First = ins
	}
	b.Last = ins
}

// InsertBefore links ins immediately before at, which must already be
// a member of b's instruction list.
func (b *BB) InsertBefore(at, ins *Ins) {
	ins.Prev = at.Prev
	ins.Next = at
	if at.Prev != nil {
		at.Prev.Next = ins
	} else {
		b.First = ins
	}
	at.Prev = ins
}

// LinkBBs records a CFG edge from -> to in both directions.
func LinkBBs(from, to *BB) {
	from.out.add(to)
	to.in.add(from)
}

// UnlinkBBs removes the CFG edge from -> to in both directions, if
// present.
func UnlinkBBs(from, to *BB) {
	from.out.remove(to)
	to.in.remove(from)
}
