package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mempager/mem"
)

// fakeMMU is a minimal in-memory MMU used to drive Space directly,
// independent of the afero-backed mmu.Simulated, so these tests can
// assert on exactly which MMU calls fire for each transition.
type fakeMMU struct {
	pmem     []byte
	pagesize int
	prot     map[mem.Vaddr_t]mem.Prot_t
	disk     map[mem.BlockNo][]byte
	calls    []string
}

func newFakeMMU(nframes, pagesize int) *fakeMMU {
	return &fakeMMU{
		pmem:     make([]byte, nframes*pagesize),
		pagesize: pagesize,
		prot:     make(map[mem.Vaddr_t]mem.Prot_t),
		disk:     make(map[mem.BlockNo][]byte),
	}
}

func (m *fakeMMU) ZeroFill(frame mem.FrameNo) error {
	m.calls = append(m.calls, "zerofill")
	start := int(frame) * m.pagesize
	clear(m.pmem[start : start+m.pagesize])
	return nil
}

func (m *fakeMMU) DiskRead(block mem.BlockNo, frame mem.FrameNo) error {
	m.calls = append(m.calls, "diskread")
	start := int(frame) * m.pagesize
	copy(m.pmem[start:start+m.pagesize], m.disk[block])
	return nil
}

func (m *fakeMMU) DiskWrite(frame mem.FrameNo, block mem.BlockNo) error {
	m.calls = append(m.calls, "diskwrite")
	start := int(frame) * m.pagesize
	buf := make([]byte, m.pagesize)
	copy(buf, m.pmem[start:start+m.pagesize])
	m.disk[block] = buf
	return nil
}

func (m *fakeMMU) Resident(pid mem.PID, vaddr mem.Vaddr_t, frame mem.FrameNo, prot mem.Prot_t) error {
	m.calls = append(m.calls, "resident")
	m.prot[vaddr] = prot
	return nil
}

func (m *fakeMMU) Nonresident(pid mem.PID, vaddr mem.Vaddr_t) error {
	m.calls = append(m.calls, "nonresident")
	delete(m.prot, vaddr)
	return nil
}

func (m *fakeMMU) Chprot(pid mem.PID, vaddr mem.Vaddr_t, prot mem.Prot_t) error {
	m.calls = append(m.calls, "chprot")
	m.prot[vaddr] = prot
	return nil
}

func (m *fakeMMU) Pmem() []byte { return m.pmem }

func newTestSpace(nframes, nblocks, pagesize int) (*Space, *fakeMMU) {
	m := newFakeMMU(nframes, pagesize)
	s := NewSpace(mem.NewFramePool(nframes), mem.NewBlockPool(nblocks), m, pagesize)
	return s, m
}

func TestFaultNonresidentBringsPageInReadOnly(t *testing.T) {
	t.Parallel()

	s, m := newTestSpace(2, 2, 8)
	s.Create(1)
	addr, err := s.Extend(1)
	require.NoError(t, err)

	require.NoError(t, s.Fault(1, addr))
	require.Equal(t, mem.ProtRead, m.prot[addr])
	require.Contains(t, m.calls, "zerofill")
	require.Contains(t, m.calls, "resident")
}

func TestFaultWriteUpgradesCleanToDirty(t *testing.T) {
	t.Parallel()

	s, m := newTestSpace(2, 2, 8)
	s.Create(1)
	addr, _ := s.Extend(1)

	require.NoError(t, s.Fault(1, addr)) // NONRESIDENT -> R_CLEAN
	require.NoError(t, s.Fault(1, addr)) // R_CLEAN -> R_DIRTY
	require.Equal(t, mem.ProtReadWrite, m.prot[addr])

	proc, _ := s.Procs.Lookup(1)
	require.True(t, proc.Pages[0].Dirty)
}

func TestFaultOnDirtyPageIsSpuriousNoOp(t *testing.T) {
	t.Parallel()

	s, m := newTestSpace(2, 2, 8)
	s.Create(1)
	addr, _ := s.Extend(1)
	require.NoError(t, s.Fault(1, addr))
	require.NoError(t, s.Fault(1, addr))

	before := len(m.calls)
	require.NoError(t, s.Fault(1, addr)) // R_DIRTY: spurious
	require.Equal(t, before, len(m.calls), "a fault on an already read-write page must not issue any MMU calls")
}

func TestFaultOutOfRangeIsSilentlyIgnored(t *testing.T) {
	t.Parallel()

	s, _ := newTestSpace(2, 2, 8)
	s.Create(1)
	require.NoError(t, s.Fault(1, mem.UvmBaseaddr+1000))
}

func TestFaultUnknownPidIsSilentlyIgnored(t *testing.T) {
	t.Parallel()

	s, _ := newTestSpace(2, 2, 8)
	require.NoError(t, s.Fault(99, mem.UvmBaseaddr))
}

func TestEvictWritesBackDirtyPageOnly(t *testing.T) {
	t.Parallel()

	s, m := newTestSpace(1, 2, 8)
	s.Create(1)
	addr0, _ := s.Extend(1)
	addr1, _ := s.Extend(1)

	require.NoError(t, s.Fault(1, addr0)) // page 0 resident, clean
	require.NoError(t, s.Fault(1, addr1)) // only 1 frame: evicts page 0

	require.Contains(t, m.calls, "nonresident")
	require.NotContains(t, m.calls, "diskwrite", "a clean page must not be written back on eviction")

	proc, _ := s.Procs.Lookup(1)
	require.False(t, proc.Pages[0].Resident)
}

func TestDirtyPageReloadsCleanAfterEviction(t *testing.T) {
	t.Parallel()

	s, m := newTestSpace(1, 3, 8)
	s.Create(1)
	addr0, _ := s.Extend(1)
	addr1, _ := s.Extend(1)
	addr2, _ := s.Extend(1)

	require.NoError(t, s.Fault(1, addr0))
	require.NoError(t, s.Fault(1, addr0)) // dirty page 0

	// Force eviction pressure: since there's only 1 frame, faulting
	// addr1 downgrades page 0's protection as part of the clock sweep
	// before ultimately evicting it (single-frame pool: the sweep's own
	// free-frame fast path never triggers, so the referenced frame is
	// aged then immediately reused).
	require.NoError(t, s.Fault(1, addr1))

	proc, _ := s.Procs.Lookup(1)
	require.False(t, proc.Pages[0].Resident, "single-frame pool: page 0 must have been evicted to make room for page 1")

	require.NoError(t, s.Fault(1, addr2))
	proc, _ = s.Procs.Lookup(1)
	require.False(t, proc.Pages[1].Resident)

	// Bring page 0 back: it was dirty when evicted, so disk must have
	// its content and the reload must come back resident read-only
	// (ensure-resident never dirties a page by itself).
	require.NoError(t, s.Fault(1, addr0))
	require.Equal(t, mem.ProtRead, m.prot[addr0])
	proc, _ = s.Procs.Lookup(1)
	require.True(t, proc.Pages[0].Resident)
	require.False(t, proc.Pages[0].Dirty, "a freshly loaded page starts clean even though its on-disk copy came from a dirty eviction")
}

func TestExtendRespectsMaxPages(t *testing.T) {
	t.Parallel()

	s, _ := newTestSpace(1, mem.MaxPages+1, 8)
	s.Create(1)
	for i := 0; i < mem.MaxPages; i++ {
		_, err := s.Extend(1)
		require.NoError(t, err)
	}
	_, err := s.Extend(1)
	require.Error(t, err)
}

func TestDestroyFreesFramesAndBlocksWithoutMMUCalls(t *testing.T) {
	t.Parallel()

	s, m := newTestSpace(2, 2, 8)
	s.Create(1)
	addr, _ := s.Extend(1)
	require.NoError(t, s.Fault(1, addr))

	before := len(m.calls)
	s.Destroy(1)
	require.Equal(t, before, len(m.calls), "Destroy must not issue any MMU calls")

	require.Equal(t, 0, s.Frames.InUse())
	require.Equal(t, 0, s.Blocks.InUse())
	_, ok := s.Procs.Lookup(1)
	require.False(t, ok)
}
