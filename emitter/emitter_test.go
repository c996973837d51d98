// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emitter

import (
	"testing"

	"github.com/go-interpreter/ilcompile/arena"
	"github.com/go-interpreter/ilcompile/hostiface"
	"github.com/go-interpreter/ilcompile/ilkind"
	"github.com/go-interpreter/ilcompile/intop"
	"github.com/go-interpreter/ilcompile/ir"
)

func TestAllocateVarOffsetsPacksSequentially(t *testing.T) {
	vars := ir.NewVars()
	vars.Create(ilkind.InterpI4, 0, 0)
	vars.Create(ilkind.InterpI8, 0, 0)
	vt := vars.Create(ilkind.InterpVT, hostiface.ClassHandle(1), 24)

	layout := AllocateVarOffsets(vars)

	if vars.Get(0).Offset != 0 || vars.Get(1).Offset != 8 {
		t.Fatalf("offsets = %d, %d; want 0, 8", vars.Get(0).Offset, vars.Get(1).Offset)
	}
	if vars.Get(vt).Offset != 16 {
		t.Fatalf("vt offset = %d, want 16", vars.Get(vt).Offset)
	}
	if layout.TotalSize != 16+24 {
		t.Fatalf("TotalSize = %d, want %d", layout.TotalSize, 16+24)
	}
}

func TestComputeCodeSizeAndEmitSimpleBranch(t *testing.T) {
	entry := &ir.BB{}
	target := &ir.BB{}
	entry.Next = target

	entry.AppendIns(&ir.Ins{Opcode: intop.Br, Info: ir.InfoBranchTarget, BranchTarget: target})
	target.AppendIns(&ir.Ins{Opcode: intop.RetVoid})

	total := ComputeCodeSize(entry)
	if total != 3 { // Br: opcode + 1 displacement word; RetVoid: opcode only
		t.Fatalf("ComputeCodeSize = %d, want 3", total)
	}
	if target.NativeOffset != 2 {
		t.Fatalf("target.NativeOffset = %d, want 2", target.NativeOffset)
	}

	a := arena.New()
	defer a.Close()
	buf, err := EmitCode(a, entry, total, func(*ir.Ins) int32 { return 0 })
	if err != nil {
		t.Fatal(err)
	}
	if buf.Get(0) != int32(intop.Br) {
		t.Fatalf("word 0 = %d, want Br opcode", buf.Get(0))
	}
	if buf.Get(1) == ir.DeadbeefSentinel {
		t.Fatalf("branch displacement was never patched")
	}
	wantDisp := target.NativeOffset - entry.First.NativeOffset
	if buf.Get(1) != wantDisp {
		t.Fatalf("branch displacement = %d, want %d", buf.Get(1), wantDisp)
	}
	if buf.Get(2) != int32(intop.RetVoid) {
		t.Fatalf("word 2 = %d, want RetVoid opcode", buf.Get(2))
	}
}

func TestElideBranchesDropsJumpToNextBlock(t *testing.T) {
	entry := &ir.BB{}
	next := &ir.BB{}
	entry.Next = next

	entry.AppendIns(&ir.Ins{Opcode: intop.Br, Info: ir.InfoBranchTarget, BranchTarget: next})
	next.AppendIns(&ir.Ins{Opcode: intop.RetVoid})

	ElideBranches(entry)

	if entry.Last != nil {
		t.Fatalf("entry.Last = %+v, want nil (the redundant branch should have been dropped)", entry.Last)
	}
	if entry.First != nil {
		t.Fatalf("entry.First = %+v, want nil", entry.First)
	}

	total := ComputeCodeSize(entry)
	if total != 1 { // just RetVoid's opcode word; the Br is gone entirely
		t.Fatalf("ComputeCodeSize = %d, want 1 once the dead branch is elided", total)
	}
}

func TestElideBranchesKeepsLiveBranch(t *testing.T) {
	entry := &ir.BB{}
	other := &ir.BB{}
	next := &ir.BB{}
	entry.Next = other
	other.Next = next

	entry.AppendIns(&ir.Ins{Opcode: intop.Br, Info: ir.InfoBranchTarget, BranchTarget: next})
	other.AppendIns(&ir.Ins{Opcode: intop.RetVoid})
	next.AppendIns(&ir.Ins{Opcode: intop.RetVoid})

	ElideBranches(entry)

	if entry.Last == nil || entry.Last.Opcode != intop.Br {
		t.Fatal("a branch that skips over a block must not be elided")
	}
}

func TestDataItemsDeduplicates(t *testing.T) {
	d := NewDataItems()
	i1 := d.Index(42)
	i2 := d.Index(43)
	i3 := d.Index(42)
	if i1 != i3 {
		t.Errorf("Index(42) returned different indices: %d vs %d", i1, i3)
	}
	if i1 == i2 {
		t.Errorf("distinct values got the same index")
	}

	a := arena.New()
	defer a.Close()
	buf, err := d.Finalize(a)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 2 || buf.Get(int(i1)) != 42 || buf.Get(int(i2)) != 43 {
		t.Fatalf("Finalize produced wrong table: len=%d [%d]=%d [%d]=%d", buf.Len(), i1, buf.Get(int(i1)), i2, buf.Get(int(i2)))
	}
}
