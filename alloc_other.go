// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package hub12

import (
	"errors"
	"fmt"
)

// LockedAllocator is only supported on linux.
type LockedAllocator struct{}

// Alloc implements Allocator.
func (LockedAllocator) Alloc(n int) ([]byte, error) {
	return nil, fmt.Errorf("%w: locked memory: %w", ErrAlloc, errors.ErrUnsupported)
}

// Free implements Allocator.
func (LockedAllocator) Free(b []byte) error {
	return errors.ErrUnsupported
}

func (LockedAllocator) String() string {
	return "locked"
}
