// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package intop

import (
	"testing"

	"github.com/go-interpreter/ilcompile/ilkind"
)

func TestForStackTypeSelectsFamilyMember(t *testing.T) {
	cases := []struct {
		st   ilkind.StackType
		want Op
	}{
		{ilkind.StackI4, AddI4},
		{ilkind.StackI8, AddI8},
		{ilkind.StackR4, AddR4},
		{ilkind.StackR8, AddR8},
	}
	for _, c := range cases {
		if got := ForStackType(AddI4, c.st); got != c.want {
			t.Errorf("ForStackType(AddI4, %v) = %v, want %v", c.st, got, c.want)
		}
	}
}

func TestForStackTypeNonFamilyOpcodeIsIdentity(t *testing.T) {
	if got := ForStackType(Br, ilkind.StackI4); got != Br {
		t.Errorf("ForStackType(Br, ...) = %v, want Br unchanged", got)
	}
}

func TestMovForTypeNarrowInts(t *testing.T) {
	if got := MovForType(ilkind.InterpI1, true); got != MovI4I1 {
		t.Errorf("MovForType(I1, true) = %v, want MovI4I1", got)
	}
	if got := MovForType(ilkind.InterpI1, false); got != Mov4 {
		t.Errorf("MovForType(I1, false) = %v, want Mov4", got)
	}
}

func TestMovForTypeWideAndPointerTypes(t *testing.T) {
	if got := MovForType(ilkind.InterpI8, false); got != Mov8 {
		t.Errorf("MovForType(I8) = %v, want Mov8", got)
	}
	if got := MovForType(ilkind.InterpO, false); got != MovP {
		t.Errorf("MovForType(O) = %v, want MovP", got)
	}
	if got := MovForType(ilkind.InterpVT, false); got != MovVT {
		t.Errorf("MovForType(VT) = %v, want MovVT", got)
	}
}

func TestRetForStackTypeCoversEveryStackType(t *testing.T) {
	cases := map[ilkind.StackType]Op{
		ilkind.StackI4: RetI4,
		ilkind.StackI8: RetI8,
		ilkind.StackR4: RetR4,
		ilkind.StackR8: RetR8,
		ilkind.StackO:  RetO,
		ilkind.StackMP: RetByRef,
		ilkind.StackVT: RetVT,
	}
	for st, want := range cases {
		if got := RetForStackType(st); got != want {
			t.Errorf("RetForStackType(%v) = %v, want %v", st, got, want)
		}
	}
}

func TestShapeAccessors(t *testing.T) {
	if n := NumSVars(AddI4); n != 2 {
		t.Errorf("NumSVars(AddI4) = %d, want 2", n)
	}
	if !HasDVar(AddI4) {
		t.Error("HasDVar(AddI4) = false, want true")
	}
	if HasDVar(Br) {
		t.Error("HasDVar(Br) = true, want false")
	}
	if words, ok := FixedDataWords(Br); !ok || words != 1 {
		t.Errorf("FixedDataWords(Br) = (%d, %v), want (1, true)", words, ok)
	}
	if _, ok := FixedDataWords(Switch); ok {
		t.Error("FixedDataWords(Switch) should report not ok (variable length)")
	}
}

func TestIsUncondAndCondBranch(t *testing.T) {
	if !IsUncondBranch(Br) {
		t.Error("IsUncondBranch(Br) = false, want true")
	}
	if IsUncondBranch(BrTrue) {
		t.Error("IsUncondBranch(BrTrue) = true, want false")
	}
	if !IsCondBranch(BrTrue) || !IsCondBranch(BrFalse) {
		t.Error("IsCondBranch should be true for BrTrue/BrFalse")
	}
	if IsCondBranch(Br) {
		t.Error("IsCondBranch(Br) = true, want false")
	}
}

func TestOpStringKnownAndUnknown(t *testing.T) {
	if got := AddI4.String(); got != "add.i4" {
		t.Errorf("AddI4.String() = %q, want %q", got, "add.i4")
	}
	if got := Op(-1).String(); got == "" {
		t.Error("unknown opcode should still stringify to something non-empty")
	}
}
