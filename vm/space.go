package vm

import (
	"mempager/clock"
	"mempager/mem"
	"mempager/mmu"
	"mempager/pagererr"
)

// Space is the pager's core engine: the frame and block pools, the
// process registry, the shared clock cursor, and the MMU it drives.
// pager.Pager wraps one Space with the mutex and structured logging
// needed at the public API boundary; Space itself assumes its caller
// already serializes access.
type Space struct {
	Frames   *mem.FramePool
	Blocks   *mem.BlockPool
	Procs    *Registry
	MMU      mmu.MMU
	PageSize int
	cursor   int
}

// NewSpace wires a frame pool, block pool and MMU into a fault engine.
func NewSpace(frames *mem.FramePool, blocks *mem.BlockPool, m mmu.MMU, pagesize int) *Space {
	if pagesize <= 0 {
		pagesize = mem.PageSize
	}
	return &Space{
		Frames:   frames,
		Blocks:   blocks,
		Procs:    NewRegistry(),
		MMU:      m,
		PageSize: pagesize,
	}
}

func (s *Space) vaddrFor(pidx int) mem.Vaddr_t {
	return mem.UvmBaseaddr + mem.Vaddr_t(pidx*s.PageSize)
}

// PageIndex converts a virtual address into a page-table index, reporting
// false if addr does not fall inside pid's allocated region at all.
func (s *Space) PageIndex(pid mem.PID, addr mem.Vaddr_t) (int, bool) {
	proc, ok := s.Procs.Lookup(pid)
	if !ok || addr < mem.UvmBaseaddr {
		return 0, false
	}
	idx := int(addr-mem.UvmBaseaddr) / s.PageSize
	if idx < 0 || idx >= proc.Npages {
		return 0, false
	}
	return idx, true
}

// Create registers a new, empty address space for pid.
func (s *Space) Create(pid mem.PID) {
	s.Procs.Create(pid)
}

// Extend grows pid's address space by one page, reserving a disk block to
// back it and returning the virtual address of the new page.
func (s *Space) Extend(pid mem.PID) (mem.Vaddr_t, error) {
	proc, ok := s.Procs.Lookup(pid)
	if !ok {
		return 0, pagererr.ErrInvalidArgument
	}
	if proc.Npages >= mem.MaxPages {
		return 0, pagererr.ErrOutOfMemory
	}
	block, ok := s.Blocks.Alloc(pid, proc.Npages)
	if !ok {
		return 0, pagererr.ErrOutOfSpace
	}

	idx := proc.Npages
	proc.Pages[idx] = Page_t{Allocated: true, Frame: mem.NoFrame, Block: block}
	proc.Npages++
	return s.vaddrFor(idx), nil
}

// Fault services a page fault at addr in pid's address space, implementing
// the four-state transition table: NONRESIDENT brings the page in
// read-only, R_CLEAN upgrades to R_DIRTY on a write attempt, AGED
// reinstates per the dirty flag, and a fault on an already-writable
// R_DIRTY page is spurious and only refreshes the reference bit. A fault
// at an address outside any allocated page, or naming an unknown pid, is
// silently ignored: the caller's hardware trap would not have fired one.
func (s *Space) Fault(pid mem.PID, addr mem.Vaddr_t) error {
	pidx, ok := s.PageIndex(pid, addr)
	if !ok {
		return nil
	}
	proc, _ := s.Procs.Lookup(pid)
	pg := &proc.Pages[pidx]
	if !pg.Allocated {
		return nil
	}

	if !pg.Resident {
		_, err := s.ensureResident(pid, pidx, pg)
		return err
	}

	f := s.Frames.Get(pg.Frame)
	switch f.Prot {
	case mem.ProtRead: // R_CLEAN: a write attempt upgrades to R_DIRTY.
		pg.Dirty = true
		f.Prot = mem.ProtReadWrite
		f.Ref = true
		return s.MMU.Chprot(pid, s.vaddrFor(pidx), mem.ProtReadWrite)
	case mem.ProtNone: // AGED: second-chance reinstate.
		_, err := s.ensureResident(pid, pidx, pg)
		return err
	case mem.ProtReadWrite: // R_DIRTY: spurious, refresh ref only.
		f.Ref = true
		return nil
	default:
		return nil
	}
}

// EnsureResident guarantees pid's page at pidx occupies a physical frame,
// bringing it in if necessary, and returns that frame. It never marks a
// page dirty: callers that only need to read through the page (syslog,
// the AGED-reinstate path when the dirty flag was already false) leave
// protection exactly where the state machine put it.
func (s *Space) EnsureResident(pid mem.PID, pidx int) (mem.FrameNo, error) {
	proc, ok := s.Procs.Lookup(pid)
	if !ok {
		return mem.NoFrame, pagererr.ErrInvalidArgument
	}
	if pidx < 0 || pidx >= proc.Npages {
		return mem.NoFrame, pagererr.ErrInvalidArgument
	}
	return s.ensureResident(pid, pidx, &proc.Pages[pidx])
}

func (s *Space) ensureResident(pid mem.PID, pidx int, pg *Page_t) (mem.FrameNo, error) {
	if pg.Resident {
		f := s.Frames.Get(pg.Frame)
		if f.Prot == mem.ProtNone { // AGED: restore per the dirty flag.
			newProt := mem.ProtRead
			if pg.Dirty {
				newProt = mem.ProtReadWrite
			}
			if err := s.MMU.Chprot(pid, s.vaddrFor(pidx), newProt); err != nil {
				return mem.NoFrame, err
			}
			f.Prot = newProt
		}
		f.Ref = true
		return pg.Frame, nil
	}

	frame, err := s.allocFrame()
	if err != nil {
		return mem.NoFrame, err
	}
	f := s.Frames.Get(frame)

	if pg.InDisk {
		if err := s.MMU.DiskRead(pg.Block, frame); err != nil {
			s.Frames.Free(frame)
			return mem.NoFrame, err
		}
	} else {
		if err := s.MMU.ZeroFill(frame); err != nil {
			s.Frames.Free(frame)
			return mem.NoFrame, err
		}
	}

	if err := s.MMU.Resident(pid, s.vaddrFor(pidx), frame, mem.ProtRead); err != nil {
		s.Frames.Free(frame)
		return mem.NoFrame, err
	}

	f.Used = true
	f.Owner = pid
	f.Page = pidx
	f.Prot = mem.ProtRead
	f.Ref = true

	pg.Resident = true
	pg.Dirty = false
	pg.Frame = frame
	return frame, nil
}

// allocFrame returns a frame ready for a new resident page, evicting the
// current occupant via the clock algorithm if the pool is full.
func (s *Space) allocFrame() (mem.FrameNo, error) {
	if f, ok := s.Frames.Alloc(); ok {
		return f, nil
	}

	v, err := clock.SelectVictim(clockFrames{s.Frames}, clockOwner{s}, &s.cursor)
	if err != nil {
		return mem.NoFrame, err
	}
	frame := mem.FrameNo(v.Frame)
	if !v.Free {
		if err := s.evict(frame); err != nil {
			return mem.NoFrame, err
		}
	}
	s.Frames.Take(frame)
	return frame, nil
}

// evict tears down the current occupant of frame: tell the MMU it is no
// longer resident before touching disk (so no other access can observe a
// stale mapping mid-writeback), then write its contents out if dirty.
// Clean pages are dropped without a writeback, since their on-disk copy
// (if any) is already current.
func (s *Space) evict(frame mem.FrameNo) error {
	f := s.Frames.Get(frame)
	owner, pidx := f.Owner, f.Page

	if err := s.MMU.Nonresident(owner, s.vaddrFor(pidx)); err != nil {
		return err
	}

	if proc, ok := s.Procs.Lookup(owner); ok {
		pg := &proc.Pages[pidx]
		if pg.Dirty && pg.Block != mem.NoBlock {
			if err := s.MMU.DiskWrite(frame, pg.Block); err != nil {
				return err
			}
			pg.InDisk = true
			pg.Dirty = false
		}
		pg.Resident = false
		pg.Frame = mem.NoFrame
	}

	s.Frames.Free(frame)
	return nil
}

// Destroy releases every frame and block pid owns and forgets the
// process. No MMU calls are issued: per the concurrency model, teardown
// of the client's own mappings is the caller's responsibility, not the
// pager's.
func (s *Space) Destroy(pid mem.PID) {
	proc, ok := s.Procs.Lookup(pid)
	if !ok {
		return
	}
	for i := 0; i < proc.Npages; i++ {
		pg := &proc.Pages[i]
		if pg.Resident && pg.Frame != mem.NoFrame {
			s.Frames.Free(pg.Frame)
		}
		s.Blocks.Free(pg.Block)
	}
	s.Procs.Destroy(pid)
}

// PageCount returns the number of pages pid has allocated.
func (s *Space) PageCount(pid mem.PID) (int, bool) {
	proc, ok := s.Procs.Lookup(pid)
	if !ok {
		return 0, false
	}
	return proc.Npages, true
}

// BaseAddr returns the virtual address of page 0 in every process's
// address space.
func (s *Space) BaseAddr() mem.Vaddr_t {
	return mem.UvmBaseaddr
}

// PageSizeBytes returns the configured simulated page size.
func (s *Space) PageSizeBytes() int {
	return s.PageSize
}

// Pmem exposes the MMU's physical memory array for the syslog copy-out
// path.
func (s *Space) Pmem() []byte {
	return s.MMU.Pmem()
}

// clockFrames adapts FramePool to clock.Frames.
type clockFrames struct {
	pool *mem.FramePool
}

func (c clockFrames) Len() int          { return c.pool.Len() }
func (c clockFrames) IsFree(i int) bool { return !c.pool.Get(mem.FrameNo(i)).Used }
func (c clockFrames) Ref(i int) bool    { return c.pool.Get(mem.FrameNo(i)).Ref }
func (c clockFrames) ClearRef(i int)    { c.pool.Get(mem.FrameNo(i)).Ref = false }

// clockOwner adapts Space to clock.Owner: downgrading a referenced frame
// means telling the MMU its protection is now PROT_NONE, simulating a
// cleared hardware reference bit.
type clockOwner struct {
	s *Space
}

func (o clockOwner) Downgrade(i int) error {
	f := o.s.Frames.Get(mem.FrameNo(i))
	vaddr := o.s.vaddrFor(f.Page)
	if err := o.s.MMU.Chprot(f.Owner, vaddr, mem.ProtNone); err != nil {
		return err
	}
	f.Prot = mem.ProtNone
	return nil
}
