// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"testing"

	"github.com/go-interpreter/ilcompile/arena"
	"github.com/go-interpreter/ilcompile/hostiface"
)

type fakeHost struct{}

func (fakeHost) ResolveToken(hostiface.ModuleHandle, hostiface.ClassHandle, uint32, hostiface.TokenKind) (hostiface.ResolvedToken, error) {
	return hostiface.ResolvedToken{}, nil
}
func (fakeHost) MethodSignature(hostiface.MethodHandle) (hostiface.Signature, error) {
	return hostiface.Signature{ReturnType: hostiface.ArgVoid}, nil
}
func (fakeHost) ClassSize(hostiface.ClassHandle) (int, error)            { return 0, nil }
func (fakeHost) ClassAlignment(hostiface.ClassHandle) (int, error)       { return 0, nil }
func (fakeHost) MethodClass(hostiface.MethodHandle) hostiface.ClassHandle { return 0 }
func (fakeHost) IsValueClass(hostiface.ClassHandle) bool                  { return false }
func (fakeHost) EHInfo(hostiface.MethodHandle, int) (hostiface.EHClause, bool, error) {
	return hostiface.EHClause{}, false, nil
}
func (fakeHost) AllocMem(hostiface.AllocRequest) ([]byte, error) { return nil, nil }

func TestCompileMethodAddTwoArgs(t *testing.T) {
	a := arena.New()
	defer a.Close()

	m := hostiface.MethodInfo{
		ILCode:     []byte{0x02, 0x03, 0x58, 0x2A}, // ldarg.0; ldarg.1; add; ret
		Args:       []hostiface.ArgType{hostiface.ArgI4, hostiface.ArgI4},
		ReturnType: hostiface.ArgI4,
	}

	method, err := CompileMethod(a, fakeHost{}, m)
	if err != nil {
		t.Fatal(err)
	}
	if method.Code.Len() == 0 {
		t.Fatalf("emitted zero-length code")
	}
	if method.Frame.TotalSize == 0 {
		t.Fatalf("frame size is zero for a method with 2 args + 1 temp")
	}
}

func TestCompileMethodPropagatesImportErrors(t *testing.T) {
	a := arena.New()
	defer a.Close()

	m := hostiface.MethodInfo{
		ILCode:     []byte{0xFF}, // not a recognised opcode
		ReturnType: hostiface.ArgVoid,
	}
	_, err := CompileMethod(a, fakeHost{}, m)
	if err == nil {
		t.Fatal("expected an error for unrecognised IL, got nil")
	}
	var ce *Error
	if !errorsAs(err, &ce) {
		t.Fatalf("error = %v, want *compiler.Error", err)
	}
	if ce.Stage != "import" {
		t.Errorf("Stage = %q, want %q", ce.Stage, "import")
	}
}

func errorsAs(err error, target **Error) bool {
	if e, ok := err.(*Error); ok {
		*target = e
		return true
	}
	return false
}
