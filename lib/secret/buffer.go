// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer holds sensitive bytes in locked, non-dumpable memory outside
// the Go heap. A Buffer must not be copied. Reads after Close panic.
type Buffer struct {
	mu     sync.Mutex
	region []byte
	closed bool
}

// NewFromBytes copies source into a fresh protected region and zeroes
// source in place.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, errors.New("secret: cannot create buffer from empty source")
	}

	region, err := unix.Mmap(-1, 0, len(source), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}
	if err := unix.Mlock(region); err != nil {
		unix.Munmap(region)
		return nil, fmt.Errorf("secret: mlock: %w", err)
	}
	if err := unix.Madvise(region, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(region)
		unix.Munmap(region)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP): %w", err)
	}

	copy(region, source)
	Zero(source)
	return &Buffer{region: region}, nil
}

// Bytes returns the protected region itself. Do not retain it past Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.region
}

// String copies the secret onto the heap. Use only at API boundaries
// that demand a string, such as an HTTP header value.
func (b *Buffer) String() string {
	return string(b.Bytes())
}

// Len reports the secret length, or 0 after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.region)
}

// Close zeroes, unlocks, and unmaps the region. It is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.region)
	var errs []error
	if err := unix.Munlock(b.region); err != nil {
		errs = append(errs, fmt.Errorf("secret: munlock: %w", err))
	}
	if err := unix.Munmap(b.region); err != nil {
		errs = append(errs, fmt.Errorf("secret: munmap: %w", err))
	}
	b.region = nil
	return errors.Join(errs...)
}

// Zero overwrites data with zero bytes.
func Zero(data []byte) {
	clear(data)
}
