package mem

// Frame_t is the descriptor for one physical frame: who owns it, which of
// the owner's pages it backs, its current MMU-visible protection, and the
// second-chance reference bit the clock algorithm clears and tests.
type Frame_t struct {
	Used  bool
	Owner PID
	Page  int // index into the owner's page table
	Prot  Prot_t
	Ref   bool
}

// FramePool is the fixed-size table of physical frames shared by every
// process known to the pager.
type FramePool struct {
	frames []Frame_t
}

// NewFramePool allocates a pool of n frames, all initially free.
func NewFramePool(n int) *FramePool {
	return &FramePool{frames: make([]Frame_t, n)}
}

// Len reports the pool's fixed capacity.
func (p *FramePool) Len() int {
	return len(p.frames)
}

// Get returns a pointer to the descriptor for frame i so callers can read
// or mutate it in place under the pager's single lock.
func (p *FramePool) Get(i FrameNo) *Frame_t {
	return &p.frames[i]
}

// Alloc finds the first free frame, marks it used, and returns its index.
// It reports false if the pool is exhausted.
func (p *FramePool) Alloc() (FrameNo, bool) {
	for i := range p.frames {
		if !p.frames[i].Used {
			p.frames[i] = Frame_t{Used: true}
			return FrameNo(i), true
		}
	}
	return NoFrame, false
}

// Take marks a specific, currently-free frame as used. It is called after
// clock.SelectVictim and evict() have freed up a slot the caller has
// already chosen, so no scan is needed.
func (p *FramePool) Take(i FrameNo) {
	p.frames[i] = Frame_t{Used: true}
}

// Free releases frame i back to the pool.
func (p *FramePool) Free(i FrameNo) {
	p.frames[i] = Frame_t{}
}

// InUse reports how many frames are currently allocated, for accounting.
func (p *FramePool) InUse() int {
	n := 0
	for i := range p.frames {
		if p.frames[i].Used {
			n++
		}
	}
	return n
}
