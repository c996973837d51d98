// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cfg builds and linearises the control-flow graph of blocks
// the importer discovers: it owns the IL-offset -> block lookup used
// during the decode pass (the importer wires the ir.BB edges itself
// with ir.LinkBBs), removes blocks no path reaches, and fixes a final
// IL-offset layout order for the emitter to walk (spec.md §4.2).
package cfg

import (
	"sort"

	"github.com/go-interpreter/ilcompile/ir"
)

// Graph owns every ir.BB discovered for one method, keyed by the IL
// offset of its first instruction.
type Graph struct {
	byOffset map[int32]*ir.BB
	order    []*ir.BB // discovery order; never reordered (Blocks sorts a copy)
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{byOffset: make(map[int32]*ir.BB)}
}

// GetOrCreate returns the block starting at ilOffset, creating a fresh
// empty block if ilOffset is new. It never splits an existing block:
// discoverBlocks registers every block start before any block is
// decoded.
func (g *Graph) GetOrCreate(ilOffset int32) *ir.BB {
	if bb, ok := g.byOffset[ilOffset]; ok {
		return bb
	}
	bb := &ir.BB{Index: int32(len(g.order)), ILOffset: ilOffset, StackHeight: -1}
	g.byOffset[ilOffset] = bb
	g.order = append(g.order, bb)
	return bb
}

// Lookup returns the block starting at ilOffset, if one has already
// been registered.
func (g *Graph) Lookup(ilOffset int32) (*ir.BB, bool) {
	bb, ok := g.byOffset[ilOffset]
	return bb, ok
}

// Blocks returns every block in ascending IL-offset order, even though
// they were discovered out of order (forward branch targets are
// registered before the pass reaches them). The importer uses this
// order to find where each block ends, and Linearise uses it as the
// layout order.
func (g *Graph) Blocks() []*ir.BB {
	out := make([]*ir.BB, len(g.order))
	copy(out, g.order)
	sort.Slice(out, func(i, j int) bool { return out[i].ILOffset < out[j].ILOffset })
	return out
}

// UnlinkUnreachable walks the graph forward from entry and removes
// every block (and its edges) that turns out not to be reachable —
// IL generated from source that contains genuinely dead blocks, or a
// branch folded away during import, both leave such blocks behind
// (spec.md §4.2 "PruneUnreachable").
func (g *Graph) UnlinkUnreachable(entry *ir.BB) {
	reachable := map[*ir.BB]bool{entry: true}
	stack := []*ir.BB{entry}
	for len(stack) > 0 {
		bb := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, succ := range bb.Out() {
			if !reachable[succ] {
				reachable[succ] = true
				stack = append(stack, succ)
			}
		}
	}

	kept := g.order[:0]
	for _, bb := range g.order {
		if !reachable[bb] {
			for _, pred := range append([]*ir.BB{}, bb.In()...) {
				ir.UnlinkBBs(pred, bb)
			}
			for _, succ := range append([]*ir.BB{}, bb.Out()...) {
				ir.UnlinkBBs(bb, succ)
			}
			delete(g.byOffset, bb.ILOffset)
			continue
		}
		kept = append(kept, bb)
	}
	g.order = kept
}

// Linearise assigns each remaining block's ir.BB.Next, starting at
// entry and then in ascending IL-offset order, so a block that falls
// through always sits directly before its fall-through successor in
// the code stream. Every remaining block is placed, so nothing is
// silently dropped from the stream.
func (g *Graph) Linearise(entry *ir.BB) []*ir.BB {
	var layout []*ir.BB
	visited := make(map[*ir.BB]bool)

	var walk func(bb *ir.BB)
	walk = func(bb *ir.BB) {
		if visited[bb] {
			return
		}
		visited[bb] = true
		bb.EmitState = ir.Emitting
		layout = append(layout, bb)
		bb.EmitState = ir.Emitted
	}
	walk(entry)

	for _, bb := range g.Blocks() {
		walk(bb)
	}

	for i, bb := range layout {
		if i+1 < len(layout) {
			bb.Next = layout[i+1]
		} else {
			bb.Next = nil
		}
	}
	return layout
}
