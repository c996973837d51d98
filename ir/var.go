// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ir is the data model shared by the importer, CFG and
// emitter: virtual variables, basic blocks, instructions, call info,
// relocations and the evaluation-stack snapshot type (spec.md §3).
// Indices into the Vars table are stable for the lifetime of a
// compilation even though the backing array may be reallocated as it
// grows (spec.md §4.3).
package ir

import (
	"github.com/go-interpreter/ilcompile/hostiface"
	"github.com/go-interpreter/ilcompile/ilkind"
)

// NoOffset is the sentinel Var.Offset holds before AllocateVarOffsets
// (spec.md §4.5.1) assigns it a real stack-frame position.
const NoOffset = -1

// Var is a virtual variable: a named storage slot discovered during
// import. It receives a byte offset during emission (spec.md §4.5.1).
type Var struct {
	InterpType ilkind.InterpType
	Class      hostiface.ClassHandle // nullable; only meaningful for O/VT
	Size       int                   // bytes; only meaningful for VT
	Offset     int                   // NoOffset until AllocateVarOffsets runs
	Global     bool                  // dedicated slot for the whole method
	ILGlobal   bool                  // a real IL argument/local
	Indirects  int                   // reserved for a later pass
	LiveStart  *Ins                  // reserved
	LiveEnd    *Ins                  // reserved
}

// Vars owns every virtual variable created while compiling one
// method. Blocks, instructions and stack entries reference variables
// only by index (int32) — the table is their single owner.
type Vars struct {
	list []Var
}

// NewVars returns an empty variable table, matching the source's
// CreateVarExplicit policy of starting capacity at 16 once the table
// is first grown (spec.md's SPEC_FULL.md §5 supplement).
func NewVars() *Vars {
	return &Vars{list: make([]Var, 0, 16)}
}

// Create appends a new variable and returns its stable index.
func (v *Vars) Create(interpType ilkind.InterpType, class hostiface.ClassHandle, size int) int32 {
	v.list = append(v.list, Var{
		InterpType: interpType,
		Class:      class,
		Size:       size,
		Offset:     NoOffset,
	})
	return int32(len(v.list) - 1)
}

// Get returns a pointer to the variable at index i. The pointer is
// only valid until the next Create call grows the backing array.
func (v *Vars) Get(i int32) *Var {
	return &v.list[i]
}

// Len reports how many variables have been created so far.
func (v *Vars) Len() int32 { return int32(len(v.list)) }
