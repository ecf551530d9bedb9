// Package vm holds the per-process page table and the fault state
// machine: the four states (NONRESIDENT, R_CLEAN, R_DIRTY, AGED) and the
// transitions between them. A fault handler looks up the mapping,
// decides resident vs. not, installs the page via the MMU contract, and
// decides on a protection follow-up; anonymous demand-paged memory is
// the only kind of mapping modeled here, so the state machine collapses
// to exactly these four states.
package vm

import "mempager/mem"

// Page_t is one page of a process's address space. A page is Allocated
// once Extend has handed its address to the caller; Resident tracks
// whether it currently occupies a physical frame, Dirty whether it has
// been written since it was last clean on disk, and InDisk whether Block
// holds a previously written copy.
type Page_t struct {
	Allocated bool
	Resident  bool
	Dirty     bool
	InDisk    bool
	Frame     mem.FrameNo
	Block     mem.BlockNo
}

// State reports which of the four named states a page is in, given the
// protection of the frame that currently backs it. It is used only by
// tests; the fault dispatch itself switches on Prot_t
// directly to avoid a second lookup.
type State int

const (
	Nonresident State = iota
	RClean
	RDirty
	Aged
)

func (s State) String() string {
	switch s {
	case Nonresident:
		return "NONRESIDENT"
	case RClean:
		return "R_CLEAN"
	case RDirty:
		return "R_DIRTY"
	case Aged:
		return "AGED"
	default:
		return "INVALID"
	}
}

// StateOf derives a page's state from its residency and the protection
// of the frame backing it.
func StateOf(pg *Page_t, prot mem.Prot_t) State {
	if !pg.Resident {
		return Nonresident
	}
	switch prot {
	case mem.ProtNone:
		return Aged
	case mem.ProtReadWrite:
		return RDirty
	default:
		return RClean
	}
}

// Proc_t is a client process's address space: a fixed-capacity page
// table, grown one entry at a time by Extend. MaxPages mirrors
// spec.md's stated preference for the simpler of its two sizing variants.
type Proc_t struct {
	Pid    mem.PID
	Npages int
	Pages  [mem.MaxPages]Page_t
}
