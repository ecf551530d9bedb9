package pager

import "sync/atomic"

// Stats accumulates pager-wide event counters: atomic adds on the hot
// path, a locked snapshot for reporting. It records event counts rather
// than elapsed time, since the pager has no notion of per-process CPU
// usage to charge.
type Stats struct {
	faults     int64
	evictions  int64
	diskReads  int64
	diskWrites int64
}

func (s *Stats) recordFault()    { atomic.AddInt64(&s.faults, 1) }
func (s *Stats) recordEviction() { atomic.AddInt64(&s.evictions, 1) }
func (s *Stats) recordDiskRead() { atomic.AddInt64(&s.diskReads, 1) }
func (s *Stats) recordDiskWrite(){ atomic.AddInt64(&s.diskWrites, 1) }

// Snapshot is a point-in-time, immutable copy of Stats suitable for
// logging or printing.
type Snapshot struct {
	Faults       int64
	Evictions    int64
	DiskReads    int64
	DiskWrites   int64
	FramesUsed   int
	FramesTotal  int
	BlocksUsed   int
	BlocksTotal  int
	Processes    int
}

func (s *Stats) fetch() (faults, evictions, reads, writes int64) {
	return atomic.LoadInt64(&s.faults),
		atomic.LoadInt64(&s.evictions),
		atomic.LoadInt64(&s.diskReads),
		atomic.LoadInt64(&s.diskWrites)
}
