// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emitter

import "github.com/go-interpreter/ilcompile/arena"

// DataItems deduplicates opaque host handles (method handles, class
// handles, boxed constants, ...) into a dense table: each distinct
// value is assigned an index the instruction stream references
// instead of embedding the (pointer-width) handle directly in an
// int32 word (spec.md §3 "Data-item table").
type DataItems struct {
	byValue map[uintptr]int32
	values  []uintptr
}

// NewDataItems returns an empty table.
func NewDataItems() *DataItems {
	return &DataItems{byValue: make(map[uintptr]int32)}
}

// Index returns the stable index for v, adding it to the table on its
// first use.
func (d *DataItems) Index(v uintptr) int32 {
	if idx, ok := d.byValue[v]; ok {
		return idx
	}
	idx := int32(len(d.values))
	d.values = append(d.values, v)
	d.byValue[v] = idx
	return idx
}

// Finalize copies the table into arena-owned, pointer-free memory —
// safe to do because every entry is already a plain uintptr rather
// than a live Go pointer the garbage collector would need to trace.
func (d *DataItems) Finalize(a *arena.Arena) (arena.UintptrBuf, error) {
	buf, err := a.AllocUintptr(len(d.values))
	if err != nil {
		return arena.UintptrBuf{}, err
	}
	for i, v := range d.values {
		buf.Set(i, v)
	}
	return buf, nil
}
