// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import "testing"

func TestNewZeroValueMatchesNothing(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Interpreter.Matches("Asm", "Class", "Foo", "") {
		t.Fatal("zero-value Interpreter set matched something")
	}
}

func TestNewRecognisesAllThreeKeys(t *testing.T) {
	c, err := New(map[string]string{
		"Interpreter": "Foo",
		"InterpHalt":  "Bar",
		"InterpDump":  "Baz",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !c.Interpreter.Matches("Asm", "Class", "Foo", "") {
		t.Error("Interpreter set didn't match Foo")
	}
	if !c.InterpHalt.Matches("Asm", "Class", "Bar", "") {
		t.Error("InterpHalt set didn't match Bar")
	}
	if !c.InterpDump.Matches("Asm", "Class", "Baz", "") {
		t.Error("InterpDump set didn't match Baz")
	}
}

func TestNewIgnoresUnrecognisedKeys(t *testing.T) {
	c, err := New(map[string]string{"SomeFutureSwitch": "Quux"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Interpreter.Matches("Asm", "Class", "Quux", "") {
		t.Fatal("unrecognised key leaked into Interpreter set")
	}
}

func TestNewPropagatesParseErrors(t *testing.T) {
	if _, err := New(map[string]string{"Interpreter": "Foo("}); err == nil {
		t.Fatal("expected an error for a malformed pattern")
	}
}
