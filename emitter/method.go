// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emitter

import "github.com/go-interpreter/ilcompile/arena"

// Method is the finished artifact CompileMethod hands back: the
// linear instruction stream, the frame size every activation of this
// method needs, and the deduplicated data-item table the stream's
// CALL instructions index into (spec.md §1, §6).
type Method struct {
	Code      arena.Int32Buf
	DataItems arena.UintptrBuf
	Frame     FrameLayout
}
