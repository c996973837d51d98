// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ilkind

import "testing"

func TestToStackTypeNarrowsCollapseToI4(t *testing.T) {
	for _, it := range []InterpType{InterpI1, InterpU1, InterpI2, InterpU2, InterpI4} {
		st, ok := ToStackType(it)
		if !ok {
			t.Fatalf("ToStackType(%v) reported not ok", it)
		}
		if st != StackI4 {
			t.Errorf("ToStackType(%v) = %v, want StackI4", it, st)
		}
	}
}

func TestToStackTypeVoidFails(t *testing.T) {
	if _, ok := ToStackType(InterpVoid); ok {
		t.Fatal("ToStackType(InterpVoid) should report not ok")
	}
}

func TestToInterpTypeRoundTripsWideTypes(t *testing.T) {
	cases := map[StackType]InterpType{
		StackI4: InterpI4,
		StackI8: InterpI8,
		StackR4: InterpR4,
		StackR8: InterpR8,
		StackO:  InterpO,
		StackVT: InterpVT,
		StackMP: InterpByRef,
	}
	for st, want := range cases {
		got := ToInterpType(st)
		if got != want {
			t.Errorf("ToInterpType(%v) = %v, want %v", st, got, want)
		}
		if back, ok := ToStackType(got); !ok || back != st {
			t.Errorf("ToStackType(%v) = %v, %v, want %v, true", got, back, ok, st)
		}
	}
}

func TestIsNarrowInt(t *testing.T) {
	for _, it := range []InterpType{InterpI1, InterpU1, InterpI2, InterpU2} {
		if !it.IsNarrowInt() {
			t.Errorf("%v.IsNarrowInt() = false, want true", it)
		}
	}
	for _, it := range []InterpType{InterpI4, InterpI8, InterpO, InterpVoid} {
		if it.IsNarrowInt() {
			t.Errorf("%v.IsNarrowInt() = true, want false", it)
		}
	}
}

func TestStackTypeIsIntegerIsFloat(t *testing.T) {
	if !StackI4.IsInteger() || !StackI8.IsInteger() || !StackMP.IsInteger() {
		t.Error("expected I4/I8/MP to be integer stack types")
	}
	if StackR4.IsInteger() || StackO.IsInteger() {
		t.Error("R4/O should not be integer stack types")
	}
	if !StackR4.IsFloat() || !StackR8.IsFloat() {
		t.Error("expected R4/R8 to be float stack types")
	}
	if StackI4.IsFloat() {
		t.Error("I4 should not be a float stack type")
	}
}

func TestInterpTypeSize(t *testing.T) {
	cases := map[InterpType]int{
		InterpI1: 1, InterpU1: 1,
		InterpI2: 2, InterpU2: 2,
		InterpI4: 4, InterpR4: 4,
		InterpI8: 8, InterpR8: 8, InterpO: 8, InterpByRef: 8,
		InterpVoid: 0,
	}
	for it, want := range cases {
		if got := it.Size(); got != want {
			t.Errorf("%v.Size() = %d, want %d", it, got, want)
		}
	}
}

func TestStringersCoverKnownValues(t *testing.T) {
	if got := StackI4.String(); got != "i4" {
		t.Errorf("StackI4.String() = %q, want %q", got, "i4")
	}
	if got := InterpByRef.String(); got != "byref" {
		t.Errorf("InterpByRef.String() = %q, want %q", got, "byref")
	}
	if got := StackType(127).String(); got == "" {
		t.Error("unknown StackType should still stringify to something non-empty")
	}
}
