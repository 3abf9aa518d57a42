// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds key material outside the Go heap. A [Buffer] is
// an anonymous mmap region, excluded from core dumps and locked against
// swap where the process's memlock limit allows, and zeroed when closed.
// The garbage collector never sees the region, so it cannot leave stray
// copies of the secret behind.
package secret

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrEmpty is returned for a secret with no content.
var ErrEmpty = errors.New("secret is empty")

// Buffer is mmap-backed memory for one secret. It must not be copied.
// Reading a closed Buffer panics.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	locked bool
	closed bool
}

// New maps a zeroed region of size bytes. mlock failing (commonly a low
// RLIMIT_MEMLOCK in containers) is not an error; [Buffer.Locked]
// reports whether it succeeded.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}
	buffer := &Buffer{data: data}
	buffer.locked = unix.Mlock(data) == nil
	// Best effort: older kernels reject MADV_DONTDUMP.
	_ = unix.Madvise(data, unix.MADV_DONTDUMP)
	return buffer, nil
}

// FromBytes moves source into a new Buffer and zeroes source.
func FromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, ErrEmpty
	}
	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(buffer.data, source)
	Zero(source)
	return buffer, nil
}

// ReadFile reads the file at path into a Buffer. The intermediate heap
// copy is zeroed before returning.
func ReadFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		Zero(data)
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return FromBytes(data)
}

// Bytes returns the secret. The slice aliases the mapped region and is
// invalid after Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.data
}

// Reader returns a reader over the secret, for parsers that take an
// io.Reader. It is invalid after Close.
func (b *Buffer) Reader() *bytes.Reader {
	return bytes.NewReader(b.Bytes())
}

// Len returns the secret's size in bytes, or 0 after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Locked reports whether the region is locked against swap.
func (b *Buffer) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}

// Close zeroes and unmaps the region. It is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	Zero(b.data)

	var errs []error
	if b.locked {
		if err := unix.Munlock(b.data); err != nil {
			errs = append(errs, fmt.Errorf("secret: munlock: %w", err))
		}
	}
	if err := unix.Munmap(b.data); err != nil {
		errs = append(errs, fmt.Errorf("secret: munmap: %w", err))
	}
	b.data = nil
	return errors.Join(errs...)
}

// Zero overwrites data with zeroes.
func Zero(data []byte) {
	clear(data)
}
