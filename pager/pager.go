// Package pager exposes the public, serialized pager API: Create, Extend,
// Fault, Syslog, and Destroy, each backed by vm.Space and guarded by one
// mutex. A builder returns a handle rather than relying on package-level
// state, since this pager must support being instantiated more than
// once, in tests and in the CLI demo alike.
package pager

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"mempager/config"
	"mempager/mem"
	"mempager/mmu"
	"mempager/syslog"
	"mempager/vm"
)

// Pager is the serialized handle client code drives. Every exported
// method takes the same lock, so MMU operations issued from within a
// single call are observed by the rest of the system in program order.
type Pager struct {
	mu    sync.Mutex
	space *vm.Space
	log   *slog.Logger
	out   io.Writer
	stats Stats
}

// Option configures a Pager at construction time.
type Option func(*Pager)

// WithLogger overrides the pager's structured logger. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pager) { p.log = l }
}

// WithOutput overrides where Syslog writes its hex dumps. The default is
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Pager) { p.out = w }
}

// New builds a Pager over m, sized per cfg.Pager.
func New(cfg config.Config, m mmu.MMU, opts ...Option) *Pager {
	p := &Pager{
		log: slog.Default(),
		out: os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}

	counted := countingMMU{MMU: m, stats: &p.stats}
	frames := mem.NewFramePool(cfg.Pager.NFrames)
	blocks := mem.NewBlockPool(cfg.Pager.NBlocks)
	p.space = vm.NewSpace(frames, blocks, counted, cfg.Pager.PageSize)
	return p
}

// Create registers pid with an empty address space.
func (p *Pager) Create(pid mem.PID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.space.Create(pid)
	p.log.Debug("pager: create", "pid", pid)
}

// Extend grows pid's address space by one page and returns its address.
func (p *Pager) Extend(pid mem.PID) (mem.Vaddr_t, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	addr, err := p.space.Extend(pid)
	if err != nil {
		p.log.Warn("pager: extend failed", "pid", pid, "err", err)
		return 0, err
	}
	p.log.Debug("pager: extend", "pid", pid, "addr", addr)
	return addr, nil
}

// Fault services a page fault at addr in pid's address space. Faults
// outside any allocated page, or naming an unknown pid, are silently
// ignored, matching the contract a real hardware trap would present.
func (p *Pager) Fault(pid mem.PID, addr mem.Vaddr_t) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.recordFault()
	if err := p.space.Fault(pid, addr); err != nil {
		p.log.Warn("pager: fault failed", "pid", pid, "addr", addr, "err", err)
		return
	}
	p.log.Debug("pager: fault", "pid", pid, "addr", addr)
}

// Syslog copies length bytes starting at addr out of pid's address space
// and writes a hex dump to the pager's configured output.
func (p *Pager) Syslog(pid mem.PID, addr mem.Vaddr_t, length int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := syslog.CopyOut(p.out, p.space, pid, addr, length)
	if err != nil {
		p.log.Warn("pager: syslog failed", "pid", pid, "addr", addr, "len", length, "err", err)
		return err
	}
	p.log.Debug("pager: syslog", "pid", pid, "addr", addr, "len", length)
	return nil
}

// Destroy releases every frame and block pid owns. No MMU calls are
// issued: tearing down the client's own mappings is the caller's
// responsibility, not the pager's.
func (p *Pager) Destroy(pid mem.PID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.space.Destroy(pid)
	p.log.Debug("pager: destroy", "pid", pid)
}

// Stats returns a point-in-time snapshot of pager-wide counters.
func (p *Pager) Stats() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	faults, evictions, reads, writes := p.stats.fetch()
	return Snapshot{
		Faults:      faults,
		Evictions:   evictions,
		DiskReads:   reads,
		DiskWrites:  writes,
		FramesUsed:  p.space.Frames.InUse(),
		FramesTotal: p.space.Frames.Len(),
		BlocksUsed:  p.space.Blocks.InUse(),
		BlocksTotal: p.space.Blocks.Len(),
		Processes:   p.space.Procs.Len(),
	}
}
