// Package pagererr defines the pager's error taxonomy as sentinel values,
// so callers compare with errors.Is instead of a switch over magic
// numbers.
package pagererr

import "errors"

var (
	// ErrInvalidArgument covers caller errors: an unknown pid, or a
	// virtual address/length outside a process's allocated range.
	ErrInvalidArgument = errors.New("pager: invalid argument")

	// ErrOutOfSpace is returned when Extend cannot reserve a disk block
	// because the block pool is exhausted.
	ErrOutOfSpace = errors.New("pager: out of disk space")

	// ErrOutOfMemory is returned when a process has reached MaxPages.
	ErrOutOfMemory = errors.New("pager: process page table full")
)
