// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import (
	"testing"

	"github.com/go-interpreter/ilcompile/hostiface"
	"github.com/go-interpreter/ilcompile/ilkind"
	"github.com/go-interpreter/ilcompile/intop"
)

func TestVarsCreateStableIndices(t *testing.T) {
	v := NewVars()
	i0 := v.Create(ilkind.InterpI4, 0, 0)
	i1 := v.Create(ilkind.InterpVT, hostiface.ClassHandle(42), 16)
	if i0 != 0 || i1 != 1 {
		t.Fatalf("indices = %d, %d; want 0, 1", i0, i1)
	}
	if v.Len() != 2 {
		t.Fatalf("Len = %d, want 2", v.Len())
	}
	if got := v.Get(i1); got.Size != 16 || got.Class != 42 {
		t.Errorf("Get(1) = %+v, want Size=16 Class=42", got)
	}
	if v.Get(i0).Offset != NoOffset {
		t.Errorf("fresh var Offset = %d, want NoOffset", v.Get(i0).Offset)
	}
}

func TestLinksCapacityLaw(t *testing.T) {
	cases := []struct{ n, want int }{
		{0, 0}, {1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {8, 8}, {9, 16},
	}
	for _, c := range cases {
		if got := linksCapacity(c.n); got != c.want {
			t.Errorf("linksCapacity(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}

func TestLinkAndUnlinkBBs(t *testing.T) {
	a := &BB{Index: 0}
	b := &BB{Index: 1}
	c := &BB{Index: 2}

	LinkBBs(a, b)
	LinkBBs(a, c)

	if len(a.Out()) != 2 || len(b.In()) != 1 || len(c.In()) != 1 {
		t.Fatalf("after linking: a.Out=%d b.In=%d c.In=%d", len(a.Out()), len(b.In()), len(c.In()))
	}

	UnlinkBBs(a, b)
	if len(a.Out()) != 1 || a.Out()[0] != c {
		t.Fatalf("after unlinking a->b: a.Out=%v", a.Out())
	}
	if len(b.In()) != 0 {
		t.Fatalf("b.In after unlink = %v, want empty", b.In())
	}
}

func TestAppendAndInsertIns(t *testing.T) {
	bb := &BB{Index: 0}
	i1 := &Ins{Opcode: intop.LdcI4}
	i2 := &Ins{Opcode: intop.Br}
	i3 := &Ins{Opcode: intop.Nop}

	bb.AppendIns(i1)
	bb.AppendIns(i2)
	bb.InsertBefore(i2, i3)

	got := []*Ins{}
	for ins := bb.First; ins != nil; ins = ins.Next {
		got = append(got, ins)
	}
	if len(got) != 3 || got[0] != i1 || got[1] != i3 || got[2] != i2 {
		t.Fatalf("instruction order wrong: %v", got)
	}
	if bb.Last != i2 {
		t.Errorf("bb.Last = %v, want i2", bb.Last)
	}
	if !i3.IsNop() {
		t.Errorf("i3.IsNop() = false, want true")
	}
}

func TestForEachSVarCallArgs(t *testing.T) {
	ins := &Ins{
		Opcode: intop.Call,
		Flags:  FlagCall,
		SVars:  [3]int32{CallArgsSVar, CallArgsTerminator, CallArgsTerminator},
		Call:   &CallInfo{ArgVars: []int32{3, 4, 5}},
	}
	var got []int32
	ins.ForEachSVar(func(v int32) { got = append(got, v) })
	if len(got) != 3 || got[0] != 3 || got[1] != 4 || got[2] != 5 {
		t.Errorf("ForEachSVar = %v, want [3 4 5]", got)
	}
}

func TestMergeStackTypeInfoDiscardsMismatchedClass(t *testing.T) {
	dst := &StackInfo{Type: ilkind.StackO, Class: hostiface.ClassHandle(1), Var: 0}
	src := &StackInfo{Type: ilkind.StackO, Class: hostiface.ClassHandle(2), Var: 0}
	MergeStackTypeInfo(dst, src)
	if dst.Class != 0 {
		t.Errorf("dst.Class = %d, want 0 after mismatched merge", dst.Class)
	}
}
