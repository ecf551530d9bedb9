package mmu

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/afero"

	"mempager/mem"
)

// mapping is one process's view of a single resident virtual page.
type mapping struct {
	frame mem.FrameNo
	prot  mem.Prot_t
}

// Simulated is a software stand-in for a real hardware MMU: an in-process
// byte slice for physical memory and a per-process table of virtual
// mappings. disk_read/disk_write are backed by an afero.Fs, one file per
// block index, so the simulated disk can run purely in memory during
// tests (afero.NewMemMapFs) or be pointed at a real directory for manual
// inspection (afero.NewOsFs rooted at a temp dir).
type Simulated struct {
	mu       sync.Mutex
	pagesize int
	pmem     []byte
	disk     afero.Fs
	mappings map[mem.PID]map[mem.Vaddr_t]mapping
}

// NewSimulated builds a simulated MMU with nframes physical frames of
// pagesize bytes each, backed by disk for block storage.
func NewSimulated(nframes, pagesize int, disk afero.Fs) *Simulated {
	return &Simulated{
		pagesize: pagesize,
		pmem:     make([]byte, nframes*pagesize),
		disk:     disk,
		mappings: make(map[mem.PID]map[mem.Vaddr_t]mapping),
	}
}

func (s *Simulated) blockPath(block mem.BlockNo) string {
	return fmt.Sprintf("block-%d", block)
}

func (s *Simulated) frameRange(frame mem.FrameNo) (int, int) {
	start := int(frame) * s.pagesize
	return start, start + s.pagesize
}

// pageBase splits vaddr into the page-aligned address Resident/Chprot
// installed a mapping under and the byte offset within that page, so
// ReadByte/WriteByte can address individual bytes of a resident page
// instead of only its first one.
func (s *Simulated) pageBase(vaddr mem.Vaddr_t) (mem.Vaddr_t, int) {
	off := int(vaddr-mem.UvmBaseaddr) % s.pagesize
	return vaddr - mem.Vaddr_t(off), off
}

func (s *Simulated) ZeroFill(frame mem.FrameNo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end := s.frameRange(frame)
	clear(s.pmem[start:end])
	return nil
}

func (s *Simulated) DiskRead(block mem.BlockNo, frame mem.FrameNo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end := s.frameRange(frame)

	f, err := s.disk.Open(s.blockPath(block))
	if err != nil {
		if os.IsNotExist(err) {
			// A block that was reserved by Extend but never written to
			// (DiskWrite never ran) reads back as zeroes.
			clear(s.pmem[start:end])
			return nil
		}
		return fmt.Errorf("mmu: disk read block %d: %w", block, err)
	}
	defer f.Close()

	if _, err := io.ReadFull(f, s.pmem[start:end]); err != nil {
		return fmt.Errorf("mmu: disk read block %d: %w", block, err)
	}
	return nil
}

func (s *Simulated) DiskWrite(frame mem.FrameNo, block mem.BlockNo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end := s.frameRange(frame)
	if err := afero.WriteFile(s.disk, s.blockPath(block), s.pmem[start:end], 0o644); err != nil {
		return fmt.Errorf("mmu: disk write block %d: %w", block, err)
	}
	return nil
}

func (s *Simulated) Resident(pid mem.PID, vaddr mem.Vaddr_t, frame mem.FrameNo, prot mem.Prot_t) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.mappings[pid]
	if m == nil {
		m = make(map[mem.Vaddr_t]mapping)
		s.mappings[pid] = m
	}
	m[vaddr] = mapping{frame: frame, prot: prot}
	return nil
}

func (s *Simulated) Nonresident(pid mem.PID, vaddr mem.Vaddr_t) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mappings[pid], vaddr)
	return nil
}

func (s *Simulated) Chprot(pid mem.PID, vaddr mem.Vaddr_t, prot mem.Prot_t) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mappings[pid][vaddr]
	if !ok {
		return fmt.Errorf("mmu: chprot: pid %d has no mapping at %#x", pid, vaddr)
	}
	m.prot = prot
	s.mappings[pid][vaddr] = m
	return nil
}

func (s *Simulated) Pmem() []byte {
	return s.pmem
}

// LiveMappings reports how many resident pages pid still has installed.
// It exists for the CLI demo's post-Destroy assertion: the pager itself
// never calls back into the MMU during Destroy, so a nonzero count there
// means pid's mappings are still installed: nothing on the host side has
// removed them.
func (s *Simulated) LiveMappings(pid mem.PID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mappings[pid])
}

// ReadByte and WriteByte let a test or demo scenario act as the client
// process touching its own mapped memory after a Fault call has brought
// the page in, standing in for the hardware load/store a real MMU would
// service directly. They are not part of the MMU contract the pager
// depends on.
func (s *Simulated) ReadByte(pid mem.PID, vaddr mem.Vaddr_t) (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base, off := s.pageBase(vaddr)
	m, ok := s.mappings[pid][base]
	if !ok {
		return 0, fmt.Errorf("mmu: read: pid %d has no mapping at %#x", pid, vaddr)
	}
	start, _ := s.frameRange(m.frame)
	return s.pmem[start+off], nil
}

func (s *Simulated) WriteByte(pid mem.PID, vaddr mem.Vaddr_t, b byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	base, off := s.pageBase(vaddr)
	m, ok := s.mappings[pid][base]
	if !ok {
		return fmt.Errorf("mmu: write: pid %d has no mapping at %#x", pid, vaddr)
	}
	if m.prot != mem.ProtReadWrite {
		return fmt.Errorf("mmu: write: pid %d mapping at %#x is not writable (prot=%s)", pid, vaddr, m.prot)
	}
	start, _ := s.frameRange(m.frame)
	s.pmem[start+off] = b
	return nil
}
