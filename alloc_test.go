// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

import (
	"errors"
	"testing"
)

func TestHeapAllocator(t *testing.T) {
	var a HeapAllocator
	b, err := a.Alloc(16)
	if err != nil || len(b) != 16 {
		t.Fatalf("Alloc(16) = %d bytes, %v", len(b), err)
	}
	if err := a.Free(b); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Alloc(0); !errors.Is(err, ErrAlloc) {
		t.Fatalf("got %v, want ErrAlloc", err)
	}
	if a.String() != "heap" {
		t.Fatal(a.String())
	}
}

func TestScanBuffersRollback(t *testing.T) {
	for fail := 1; fail < ScanLines; fail++ {
		a := &countingAlloc{failAfter: fail}
		s, err := newScanBuffers(a, 16)
		if !errors.Is(err, ErrAlloc) {
			t.Fatalf("fail after %d: got %v, want ErrAlloc", fail, err)
		}
		if s != nil {
			t.Fatal("no buffers expected on failure")
		}
		if a.live != 0 {
			t.Fatalf("fail after %d: %d buffers leaked", fail, a.live)
		}
	}
}

func TestScanBuffers(t *testing.T) {
	a := &countingAlloc{}
	s, err := newScanBuffers(a, 16)
	if err != nil {
		t.Fatal(err)
	}
	for i, l := range s.lines {
		if len(l) != 16 {
			t.Fatalf("scan line %d is %d bytes", i, len(l))
		}
	}
	if err := s.free(); err != nil {
		t.Fatal(err)
	}
	if a.live != 0 || s.lines[0] != nil {
		t.Fatal("buffers not released")
	}
	// Releasing twice is harmless.
	if err := s.free(); err != nil {
		t.Fatal(err)
	}
}

func TestProbeAllocator(t *testing.T) {
	a := ProbeAllocator()
	b, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("%s: %v", a, err)
	}
	b[63] = 1
	if err := a.Free(b); err != nil {
		t.Fatalf("%s: %v", a, err)
	}
}
