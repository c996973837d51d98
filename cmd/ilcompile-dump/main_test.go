// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestProcessAddFixture(t *testing.T) {
	out := new(bytes.Buffer)
	if err := process(out, "testdata/add.ilm"); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{"add.i4", "ret.i4"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q, got:\n%s", want, got)
		}
	}
}

func TestProcessUnreadableFile(t *testing.T) {
	out := new(bytes.Buffer)
	if err := process(out, "testdata/does-not-exist.ilm"); err == nil {
		t.Fatal("expected an error for a missing fixture file")
	}
}

func TestParseFixtureRejectsMissingIL(t *testing.T) {
	_, err := parseFixture(strings.NewReader("args: i4\nret: i4\n"))
	if err == nil {
		t.Fatal("expected an error for a fixture with no il: line")
	}
}

func TestParseFixtureRejectsUnknownKey(t *testing.T) {
	_, err := parseFixture(strings.NewReader("bogus: 1\nil: 2a\n"))
	if err == nil {
		t.Fatal("expected an error for an unrecognised fixture key")
	}
}

func TestParseHexBytes(t *testing.T) {
	b, err := parseHexBytes("02 03 58 2a")
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x02, 0x03, 0x58, 0x2a}
	if !bytes.Equal(b, want) {
		t.Fatalf("got %x, want %x", b, want)
	}
}
