// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

import (
	"errors"
	"fmt"
	"os"
)

// Allocator provides the memory the scan buffers live in.
//
// The SPI driver may be able to transfer straight from pinned memory; the
// engine itself does not care which strategy is used.
type Allocator interface {
	// Alloc returns n zeroed bytes.
	Alloc(n int) ([]byte, error)
	// Free releases a slice returned by Alloc.
	Free(b []byte) error
	String() string
}

// HeapAllocator allocates from the Go heap.
type HeapAllocator struct{}

// Alloc implements Allocator.
func (HeapAllocator) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: invalid size %d", ErrAlloc, n)
	}
	return make([]byte, n), nil
}

// Free implements Allocator. Memory is reclaimed by the garbage collector.
func (HeapAllocator) Free(b []byte) error {
	return nil
}

func (HeapAllocator) String() string {
	return "heap"
}

// ProbeAllocator returns LockedAllocator if locked memory can be obtained on
// this host, HeapAllocator otherwise.
func ProbeAllocator() Allocator {
	var l LockedAllocator
	b, err := l.Alloc(os.Getpagesize())
	if err != nil {
		return HeapAllocator{}
	}
	if err := l.Free(b); err != nil {
		return HeapAllocator{}
	}
	return l
}

// scanBuffers are the four scan lines of a frame, in shift order.
type scanBuffers struct {
	alloc Allocator
	lines [ScanLines][]byte
}

// newScanBuffers allocates four buffers of n bytes. Nothing is left
// allocated on failure.
func newScanBuffers(a Allocator, n int) (*scanBuffers, error) {
	s := &scanBuffers{alloc: a}
	for i := range s.lines {
		b, err := a.Alloc(n)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("%w: scan line %d (%s): %w", ErrAlloc, i, a, err), s.free())
		}
		s.lines[i] = b
	}
	return s, nil
}

// free releases all the buffers allocated so far.
func (s *scanBuffers) free() error {
	var errs []error
	for i, b := range s.lines {
		if b == nil {
			continue
		}
		if err := s.alloc.Free(b); err != nil {
			errs = append(errs, err)
		}
		s.lines[i] = nil
	}
	return errors.Join(errs...)
}
