// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package importer turns one method's IL bytes into the ir package's
// block/instruction model: it discovers basic block boundaries,
// builds the virtual variable table for arguments and locals, walks
// the IL evaluation stack opcode by opcode and lowers each CIL
// instruction into one or more INTOP instructions, and reconciles the
// evaluation-stack shape at every block join point (spec.md §4.1).
package importer

import "fmt"

// BadCodeError is returned for IL that is structurally malformed in a
// way the importer can detect on its own — a bad opcode, a branch
// target outside the method, or a stack-shape mismatch between two
// paths reaching the same block. It is the "BADCODE" sentinel
// spec.md §7 describes: no partial Result is ever returned alongside
// one of these.
type BadCodeError struct {
	ILOffset int32
	Reason   string
}

func (e *BadCodeError) Error() string {
	return fmt.Sprintf("importer: bad IL at offset %#x: %s", e.ILOffset, e.Reason)
}

// ErrStackUnderflow is returned when an opcode reads more evaluation
// stack slots than are available at that point in the method.
type ErrStackUnderflow struct {
	ILOffset int32
}

func (e *ErrStackUnderflow) Error() string {
	return fmt.Sprintf("importer: stack underflow at offset %#x", e.ILOffset)
}
