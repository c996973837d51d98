// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arena

import "testing"

func TestAllocGrowsWithinBlock(t *testing.T) {
	a := New()
	defer a.Close()

	b1, err := a.Alloc(4)
	if err != nil {
		t.Fatal(err)
	}
	copy(b1, []byte{1, 2, 3, 4})

	b2, err := a.Alloc(4)
	if err != nil {
		t.Fatal(err)
	}
	copy(b2, []byte{5, 6, 7, 8})

	if a.NumBlocks() != 1 {
		t.Fatalf("NumBlocks = %d, want 1", a.NumBlocks())
	}
	if b1[0] != 1 || b2[0] != 5 {
		t.Errorf("allocations overlapped or were clobbered: b1=%v b2=%v", b1, b2)
	}
}

func TestAllocOversizedRequestGetsOwnBlock(t *testing.T) {
	a := New()
	defer a.Close()

	if _, err := a.Alloc(16); err != nil {
		t.Fatal(err)
	}
	big, err := a.Alloc(8 * minBlockSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(big) != 8*minBlockSize {
		t.Errorf("len(big) = %d, want %d", len(big), 8*minBlockSize)
	}
	if a.NumBlocks() != 2 {
		t.Fatalf("NumBlocks = %d, want 2", a.NumBlocks())
	}
}

func TestAllocZeroed(t *testing.T) {
	a := New()
	defer a.Close()

	buf, err := a.AllocZeroed(32)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buf[%d] = %d, want 0", i, v)
		}
	}
}

func TestCloseUnmapsAllBlocks(t *testing.T) {
	a := New()
	if _, err := a.Alloc(16); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if a.NumBlocks() != 0 {
		t.Errorf("NumBlocks after Close = %d, want 0", a.NumBlocks())
	}
}
