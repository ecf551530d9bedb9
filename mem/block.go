package mem

// Block_t is pure bookkeeping for one disk block: whether it is in use and
// which process page it backs. It carries no byte-storage fields of its
// own; the bytes behind a block live on the far side of the mmu.MMU
// contract's DiskRead/DiskWrite operations, not inside the pager.
type Block_t struct {
	Used  bool
	Owner PID
	Page  int
}

// BlockPool is the fixed-size table of disk blocks shared by every
// process, allocated with a linear scan over a flat array.
type BlockPool struct {
	blocks []Block_t
}

// NewBlockPool allocates a pool of n blocks, all initially free.
func NewBlockPool(n int) *BlockPool {
	return &BlockPool{blocks: make([]Block_t, n)}
}

// Len reports the pool's fixed capacity.
func (p *BlockPool) Len() int {
	return len(p.blocks)
}

// Alloc reserves the first free block for (owner, page) and returns its
// index. It reports false if the pool is exhausted.
func (p *BlockPool) Alloc(owner PID, page int) (BlockNo, bool) {
	for i := range p.blocks {
		if !p.blocks[i].Used {
			p.blocks[i] = Block_t{Used: true, Owner: owner, Page: page}
			return BlockNo(i), true
		}
	}
	return NoBlock, false
}

// Free releases block i back to the pool.
func (p *BlockPool) Free(i BlockNo) {
	if i == NoBlock {
		return
	}
	p.blocks[i] = Block_t{}
}

// InUse reports how many blocks are currently allocated, for accounting.
func (p *BlockPool) InUse() int {
	n := 0
	for i := range p.blocks {
		if p.blocks[i].Used {
			n++
		}
	}
	return n
}
