// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import (
	"testing"

	"github.com/go-interpreter/ilcompile/ir"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	g := New()
	a := g.GetOrCreate(0)
	b := g.GetOrCreate(0)
	if a != b {
		t.Fatalf("GetOrCreate(0) returned different blocks across calls")
	}
	if _, ok := g.Lookup(5); ok {
		t.Fatalf("Lookup(5) found a block that was never created")
	}
}

func TestBlocksSortedByOffset(t *testing.T) {
	g := New()
	g.GetOrCreate(10)
	g.GetOrCreate(0)
	g.GetOrCreate(5)
	offs := []int32{}
	for _, bb := range g.Blocks() {
		offs = append(offs, bb.ILOffset)
	}
	if offs[0] != 0 || offs[1] != 5 || offs[2] != 10 {
		t.Fatalf("Blocks() order = %v, want [0 5 10]", offs)
	}
}

func TestUnlinkUnreachableRemovesDeadBlock(t *testing.T) {
	g := New()
	entry := g.GetOrCreate(0)
	live := g.GetOrCreate(1)
	dead := g.GetOrCreate(2)
	ir.LinkBBs(entry, live)

	g.UnlinkUnreachable(entry)

	if _, ok := g.Lookup(2); ok {
		t.Errorf("dead block at offset 2 was not removed")
	}
	if _, ok := g.Lookup(1); !ok {
		t.Errorf("live block at offset 1 was incorrectly removed")
	}
	_ = dead
}

func TestLineariseSetsNextChain(t *testing.T) {
	g := New()
	a := g.GetOrCreate(0)
	b := g.GetOrCreate(1)
	c := g.GetOrCreate(2)
	ir.LinkBBs(a, b)
	ir.LinkBBs(b, c)

	layout := g.Linearise(a)
	if len(layout) != 3 {
		t.Fatalf("Linearise returned %d blocks, want 3", len(layout))
	}
	if a.Next != b || b.Next != c || c.Next != nil {
		t.Errorf("Next chain = %v -> %v -> %v, want a->b->c->nil", a.Next, b.Next, c.Next)
	}
}
