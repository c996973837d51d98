// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arena implements the per-compilation bump allocator spec.md
// §1 and §9 describe: the emitter's pointer-free code stream and
// data-item table for one method come from a single Arena (the IR,
// basic blocks and relocations are ordinary Go values), and the whole
// thing is thrown away when the compilation ends. It
// follows the block-chaining shape of wagon's
// exec/internal/compile.MMapAllocator (see allocator_test.go), but
// backs each block with an anonymous mmap region instead of executable
// memory, satisfying the "FIXME: current allocators are malloc-based
// placeholders" note in the source compiler (see SPEC_FULL.md §4).
package arena

import (
	"encoding/binary"

	"github.com/edsrzf/mmap-go"
)

// minBlockSize is the size of the first block requested from the OS;
// it doubles (capped at maxBlockSize) each time a block is exhausted,
// so a large method doesn't pay for many tiny mmap calls.
const (
	minBlockSize = 64 * 1024
	maxBlockSize = 4 * 1024 * 1024
)

type block struct {
	mem      mmap.MMap
	consumed int
}

func newBlock(size int) (*block, error) {
	m, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, err
	}
	return &block{mem: m}, nil
}

func (b *block) remaining() int { return len(b.mem) - b.consumed }

// Arena is a single-threaded bump allocator. There is no internal
// synchronization (spec.md §5: one compilation, one arena, no
// suspension points), so concurrent use of the same Arena from more
// than one goroutine is a programming error, not a supported case.
type Arena struct {
	blocks   []*block
	cur      *block
	nextSize int
}

// New creates an empty Arena. The first block is allocated lazily on
// the first Alloc call.
func New() *Arena {
	return &Arena{nextSize: minBlockSize}
}

func align(n, to int) int {
	return (n + to - 1) &^ (to - 1)
}

// Alloc returns n uninitialized bytes. The returned slice is only
// valid until Close; it must not be retained past the end of the
// compilation that owns this Arena.
func (a *Arena) Alloc(n int) ([]byte, error) {
	const alignment = 8
	need := align(n, alignment)

	if a.cur == nil || a.cur.remaining() < need {
		size := a.nextSize
		if need > size {
			size = align(need, minBlockSize)
		}
		b, err := newBlock(size)
		if err != nil {
			return nil, err
		}
		a.blocks = append(a.blocks, b)
		a.cur = b
		if a.nextSize < maxBlockSize {
			a.nextSize *= 2
		}
	}

	buf := a.cur.mem[a.cur.consumed : a.cur.consumed+n : a.cur.consumed+need]
	a.cur.consumed += need
	return buf, nil
}

// AllocZeroed is identical to Alloc: mmap always hands back
// zero-filled pages, so there is no separate zeroing path to write.
func (a *Arena) AllocZeroed(n int) ([]byte, error) {
	return a.Alloc(n)
}

// Close unmaps every block this Arena ever allocated. The Arena (and
// every slice it produced) is unusable afterwards.
func (a *Arena) Close() error {
	var first error
	for _, b := range a.blocks {
		if err := b.mem.Unmap(); err != nil && first == nil {
			first = err
		}
	}
	a.blocks = nil
	a.cur = nil
	return first
}

// NumBlocks reports how many OS-backed blocks this Arena has
// allocated so far; used by tests to observe growth behaviour.
func (a *Arena) NumBlocks() int { return len(a.blocks) }

// Int32Buf is a fixed-length view over arena-owned memory holding
// pointer-free int32 values. The bytes are little-endian on every
// host, whatever its native byte order; Get, Set and Int32Slice
// convert to and from Go int32 values. It exists so the emitter's
// final instruction stream (spec.md §6) and similar flat tables
// can live in mmap-backed memory safely: unlike Go-managed slices of
// pointers, a slice of plain integers has nothing for the garbage
// collector to trace, so storing it off the Go heap is safe.
type Int32Buf struct {
	raw []byte
}

// AllocInt32 reserves space for n int32 values.
func (a *Arena) AllocInt32(n int) (Int32Buf, error) {
	raw, err := a.Alloc(n * 4)
	if err != nil {
		return Int32Buf{}, err
	}
	return Int32Buf{raw: raw}, nil
}

func (b Int32Buf) Len() int { return len(b.raw) / 4 }

func (b Int32Buf) Get(i int) int32 {
	return int32(binary.LittleEndian.Uint32(b.raw[i*4:]))
}

func (b Int32Buf) Set(i int, v int32) {
	binary.LittleEndian.PutUint32(b.raw[i*4:], uint32(v))
}

// Int32Slice copies the buffer out into a regular, GC-owned []int32 —
// the shape the compiler hands back to its caller, since the Arena
// (and this view into it) dies with the compilation (spec.md §1).
func (b Int32Buf) Int32Slice() []int32 {
	out := make([]int32, b.Len())
	for i := range out {
		out[i] = b.Get(i)
	}
	return out
}

// UintptrBuf is the same idea as Int32Buf for the data-item table
// (spec.md §3 "Data-item table"): a dense array of opaque, pointer-
// tagged host handles. Host handles are already plain integers from
// Go's point of view (hostiface.MethodHandle et al. are uintptr), so
// this table is exactly as pointer-free as Int32Buf.
type UintptrBuf struct {
	raw []byte
}

func (a *Arena) AllocUintptr(n int) (UintptrBuf, error) {
	raw, err := a.Alloc(n * 8)
	if err != nil {
		return UintptrBuf{}, err
	}
	return UintptrBuf{raw: raw}, nil
}

func (b UintptrBuf) Len() int { return len(b.raw) / 8 }

func (b UintptrBuf) Get(i int) uintptr {
	return uintptr(binary.LittleEndian.Uint64(b.raw[i*8:]))
}

func (b UintptrBuf) Set(i int, v uintptr) {
	binary.LittleEndian.PutUint64(b.raw[i*8:], uint64(v))
}
