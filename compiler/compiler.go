// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler orchestrates one method's compilation end to end:
// import, offset allocation, sizing, emission — and reports a single
// typed error with no partial Method on failure (spec.md §1, §7).
package compiler

import (
	"fmt"

	"github.com/go-interpreter/ilcompile/arena"
	"github.com/go-interpreter/ilcompile/emitter"
	"github.com/go-interpreter/ilcompile/hostiface"
	"github.com/go-interpreter/ilcompile/importer"
	"github.com/go-interpreter/ilcompile/ir"
)

// Error wraps any failure from a compilation stage with the stage
// name, so a caller or log line can tell import failures from
// emission failures without type-switching on the underlying error
// (spec.md §7's "BADCODE" sentinel is one possible underlying cause
// among several; this wrapper is orthogonal to it).
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("compiler: %s: %v", e.Stage, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// CompileMethod runs the full pipeline spec.md §1 describes:
// import/build-IR, elide dead branches, allocate variable offsets,
// compute the code size, then emit and relocate. The Arena it's given
// owns the emitted code stream and data-item table; the caller is responsible
// for closing it once the returned Method (which borrows arena
// memory) is no longer needed.
func CompileMethod(a *arena.Arena, host hostiface.Host, method hostiface.MethodInfo) (*emitter.Method, error) {
	result, err := importer.Import(host, method)
	if err != nil {
		return nil, &Error{"import", err}
	}

	emitter.ElideBranches(result.Entry)

	frame := emitter.AllocateVarOffsets(result.Vars)
	totalWords := emitter.ComputeCodeSize(result.Entry)

	items := emitter.NewDataItems()
	code, err := emitter.EmitCode(a, result.Entry, totalWords, func(ins *ir.Ins) int32 {
		return items.Index(uintptr(ins.Call.Method))
	})
	if err != nil {
		return nil, &Error{"emit", err}
	}

	dataBuf, err := items.Finalize(a)
	if err != nil {
		return nil, &Error{"data-items", err}
	}

	return &emitter.Method{Code: code, DataItems: dataBuf, Frame: frame}, nil
}
