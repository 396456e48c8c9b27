// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package hub12

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// LockedAllocator maps anonymous memory and locks it in RAM, so the pages
// the SPI driver reads from are never paged out mid transfer.
//
// It fails when RLIMIT_MEMLOCK is too low; use ProbeAllocator to fall back.
type LockedAllocator struct{}

// Alloc implements Allocator.
func (LockedAllocator) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: invalid size %d", ErrAlloc, n)
	}
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANONYMOUS|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %w", ErrAlloc, n, err)
	}
	if err := unix.Mlock(b); err != nil {
		_ = unix.Munmap(b)
		return nil, fmt.Errorf("%w: mlock %d bytes: %w", ErrAlloc, n, err)
	}
	return b, nil
}

// Free implements Allocator.
func (LockedAllocator) Free(b []byte) error {
	_ = unix.Munlock(b)
	return unix.Munmap(b)
}

func (LockedAllocator) String() string {
	return "locked"
}
