// Package mmu defines the external contract the pager drives and expects
// every call to be honored against: installing and tearing down mappings,
// moving page contents to and from disk, and exposing the raw physical
// memory array the pager's own copy-out path reads from directly. This is
// the "host" collaborator a real operating system would supply; Simulated
// is the software stand-in that makes the rest of the repository runnable
// end to end instead of only unit-testable against mocks.
package mmu

import "mempager/mem"

// MMU is the contract a client process's hardware (real or simulated)
// must satisfy for the pager to manage its address space.
type MMU interface {
	// ZeroFill fills frame with zero bytes, for a page touched for the
	// first time that has never been written to disk.
	ZeroFill(frame mem.FrameNo) error

	// DiskRead loads block's contents into frame.
	DiskRead(block mem.BlockNo, frame mem.FrameNo) error

	// DiskWrite writes frame's contents out to block.
	DiskWrite(frame mem.FrameNo, block mem.BlockNo) error

	// Resident installs a mapping from pid's vaddr to frame with the
	// given protection, making the page accessible to the process.
	Resident(pid mem.PID, vaddr mem.Vaddr_t, frame mem.FrameNo, prot mem.Prot_t) error

	// Nonresident removes pid's mapping at vaddr entirely.
	Nonresident(pid mem.PID, vaddr mem.Vaddr_t) error

	// Chprot changes the protection of pid's existing mapping at vaddr
	// without changing which frame it points to.
	Chprot(pid mem.PID, vaddr mem.Vaddr_t, prot mem.Prot_t) error

	// Pmem exposes the full physical memory array so the pager's own
	// syslog copy-out path can read resident page contents directly,
	// the same way a real kernel maps physical memory into its own
	// address space.
	Pmem() []byte
}
