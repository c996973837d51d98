// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import (
	"github.com/go-interpreter/ilcompile/hostiface"
	"github.com/go-interpreter/ilcompile/ilkind"
)

// StackInfo describes one slot of the import-time evaluation stack: a
// StackType plus (for O/VT) the class it carries and the Var currently
// holding its value. A BB's StackState is a snapshot of this stack at
// the block's entry, used to reconcile join points (spec.md §4.1.4).
type StackInfo struct {
	Type  ilkind.StackType
	Class hostiface.ClassHandle
	Var   int32
}

// MergeStackTypeInfo reconciles a already-visited block's recorded
// entry stack state against a second arrival along a different
// predecessor edge. Only the class handle is merged here: before
// calling this, the importer rejects a differing depth or StackType as
// bad IL and emits a move into the recorded Var when the Var differs.
// A differing class handle (e.g. two sibling classes boxed through a
// common ancestor) is simply discarded, matching MergeStackTypeInfo in
// the source compiler.
func MergeStackTypeInfo(dst, src *StackInfo) {
	if dst.Class != src.Class {
		dst.Class = hostiface.ClassHandle(0)
	}
}
