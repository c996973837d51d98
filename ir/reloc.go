// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

// RelocKind distinguishes the two shapes of forward reference the
// emitter has to patch once every block's native offset is known
// (spec.md §4.4).
type RelocKind int

const (
	// RelocLongBranch patches a single relative displacement word,
	// written at StreamOffset + Skip + 1 once Target's native offset
	// is known (the "+1" accounts for the opcode word itself). The
	// displacement is Target's native offset minus StreamOffset, the
	// start of the branch instruction.
	RelocLongBranch RelocKind = iota
	// RelocSwitch patches one label slot directly at StreamOffset, one
	// per non-default switch target, with Target's native offset minus
	// StreamOffset.
	RelocSwitch
)

// Reloc is one pending patch against the not-yet-finalised code
// stream: a placeholder word was written as 0xdeadbeef at emit time
// because Target's NativeOffset wasn't known yet, and PatchRelocations
// must overwrite it for every Reloc before the method is considered
// complete (spec.md §4.4: "no 0xdeadbeef sentinel may reach the
// finished stream").
type Reloc struct {
	Kind         RelocKind
	StreamOffset int32 // int32-word index into the code stream, not a byte offset
	Skip         int32 // extra words between StreamOffset and the patch slot (LongBranch only)
	Target       *BB
}

// DeadbeefSentinel is written into every relocation's placeholder slot
// at emit time so an unpatched reference is easy to spot in a dump.
const DeadbeefSentinel int32 = -0x21524111 // 0xdeadbeef as a signed int32
