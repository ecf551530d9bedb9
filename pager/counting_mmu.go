package pager

import "mempager/mem"
import "mempager/mmu"

// countingMMU wraps an mmu.MMU to drive Stats without touching vm.Space:
// every disk transfer and every eviction (observable as a Nonresident
// call, since vm.Space only calls it from evict) increments a counter.
type countingMMU struct {
	mmu.MMU
	stats *Stats
}

func (c countingMMU) DiskRead(block mem.BlockNo, frame mem.FrameNo) error {
	c.stats.recordDiskRead()
	return c.MMU.DiskRead(block, frame)
}

func (c countingMMU) DiskWrite(frame mem.FrameNo, block mem.BlockNo) error {
	c.stats.recordDiskWrite()
	return c.MMU.DiskWrite(frame, block)
}

func (c countingMMU) Nonresident(pid mem.PID, vaddr mem.Vaddr_t) error {
	c.stats.recordEviction()
	return c.MMU.Nonresident(pid, vaddr)
}
