package main

import (
	"fmt"

	"mempager/mem"
	"mempager/mmu"
	"mempager/pager"
)

// trace drives a pager through a scripted workload and reports which
// pids it created, so main can run the post-Destroy liveness check
// against every one of them.
type trace func(p *pager.Pager, sim *mmu.Simulated) ([]mem.PID, error)

var traces = map[string]trace{
	"extend-before-touch": extendBeforeTouch,
	"thrash":              thrash,
	"syslog-boundary":     syslogBoundary,
	"disk-exhaustion":     diskExhaustion,
	"syslog-bounds":       syslogBounds,
	"isolation":           isolation,
}

// extendBeforeTouch checks that the first byte of a fresh page reads
// back as zero, then write-faults the page and writes to it.
func extendBeforeTouch(p *pager.Pager, sim *mmu.Simulated) ([]mem.PID, error) {
	const pid mem.PID = 1
	p.Create(pid)
	addr, err := p.Extend(pid)
	if err != nil {
		return nil, err
	}

	p.Fault(pid, addr)
	b, err := sim.ReadByte(pid, addr)
	if err != nil {
		return nil, err
	}
	if b != 0 {
		return nil, fmt.Errorf("extend-before-touch: expected zero-filled page, got %#x", b)
	}

	p.Fault(pid, addr) // write-fault: R_CLEAN -> R_DIRTY
	if err := sim.WriteByte(pid, addr, 'A'); err != nil {
		return nil, err
	}
	fmt.Println("extend-before-touch: ok")
	return []mem.PID{pid}, nil
}

// thrash allocates more pages than frames, writes each one, then reads
// them back repeatedly, in the same order each round, to force the clock
// algorithm to evict and reload continuously.
func thrash(p *pager.Pager, sim *mmu.Simulated) ([]mem.PID, error) {
	const pid mem.PID = 1
	const npages = 6
	p.Create(pid)

	addrs := make([]mem.Vaddr_t, npages)
	for i := 0; i < npages; i++ {
		addr, err := p.Extend(pid)
		if err != nil {
			return nil, err
		}
		addrs[i] = addr

		p.Fault(pid, addr)
		p.Fault(pid, addr)
		if err := sim.WriteByte(pid, addr, byte('A'+i)); err != nil {
			return nil, err
		}
	}

	for round := 0; round < 5; round++ {
		for i, addr := range addrs {
			p.Fault(pid, addr)
			b, err := sim.ReadByte(pid, addr)
			if err != nil {
				return nil, err
			}
			if b != byte('A'+i) {
				return nil, fmt.Errorf("thrash: round %d page %d: expected %q got %q", round, i, 'A'+i, b)
			}
		}
	}
	fmt.Println("thrash: ok")
	return []mem.PID{pid}, nil
}

// syslogBoundary writes bytes on both sides of a page boundary and
// syslogs the 20-byte range spanning it; the hex dump is printed, not
// compared against the written bytes.
func syslogBoundary(p *pager.Pager, sim *mmu.Simulated) ([]mem.PID, error) {
	const pid mem.PID = 1
	p.Create(pid)

	p0, err := p.Extend(pid)
	if err != nil {
		return nil, err
	}
	p1, err := p.Extend(pid)
	if err != nil {
		return nil, err
	}

	pagesize := int(p1 - p0)
	tail := "ABCDEFGHI "
	head := "JKLMNOPQR "
	writeString(p, sim, pid, p0+mem.Vaddr_t(pagesize-10), tail)
	writeString(p, sim, pid, p1, head)

	if err := p.Syslog(pid, p0+mem.Vaddr_t(pagesize-10), 20); err != nil {
		return nil, err
	}
	fmt.Println("syslog-boundary: ok")
	return []mem.PID{pid}, nil
}

func writeString(p *pager.Pager, sim *mmu.Simulated, pid mem.PID, addr mem.Vaddr_t, s string) {
	for i := 0; i < len(s); i++ {
		a := addr + mem.Vaddr_t(i)
		p.Fault(pid, a)
		p.Fault(pid, a)
		_ = sim.WriteByte(pid, a, s[i])
	}
}

// diskExhaustion calls Extend 10 times, prints how many succeeded (8
// with NBLOCKS=8), and checks that every allocated page can be syslogged.
func diskExhaustion(p *pager.Pager, sim *mmu.Simulated) ([]mem.PID, error) {
	const pid mem.PID = 1
	p.Create(pid)

	ok := 0
	var addrs []mem.Vaddr_t
	for i := 0; i < 10; i++ {
		addr, err := p.Extend(pid)
		if err != nil {
			continue
		}
		ok++
		addrs = append(addrs, addr)
	}
	fmt.Printf("disk-exhaustion: %d of 10 extends succeeded\n", ok)

	for _, addr := range addrs {
		p.Fault(pid, addr)
		if err := p.Syslog(pid, addr, 1); err != nil {
			return nil, err
		}
	}
	return []mem.PID{pid}, nil
}

// syslogBounds exercises the boundary cases for syslog
// argument validation.
func syslogBounds(p *pager.Pager, sim *mmu.Simulated) ([]mem.PID, error) {
	const pid mem.PID = 1
	p.Create(pid)
	addr, err := p.Extend(pid)
	if err != nil {
		return nil, err
	}

	if err := p.Syslog(pid, 0, 10); err == nil {
		return nil, fmt.Errorf("syslog-bounds: expected error for a nil address")
	}
	if err := p.Syslog(pid, addr, 0); err != nil {
		return nil, fmt.Errorf("syslog-bounds: zero-length call must succeed: %w", err)
	}
	fmt.Println("syslog-bounds: ok")
	return []mem.PID{pid}, nil
}

// isolation checks that two processes extending pages at the same
// symbolic address never observe each other's bytes.
func isolation(p *pager.Pager, sim *mmu.Simulated) ([]mem.PID, error) {
	const pidA, pidB mem.PID = 1, 2
	p.Create(pidA)
	p.Create(pidB)

	var addrsA, addrsB []mem.Vaddr_t
	for i := 0; i < 3; i++ {
		a, err := p.Extend(pidA)
		if err != nil {
			return nil, err
		}
		b, err := p.Extend(pidB)
		if err != nil {
			return nil, err
		}
		addrsA = append(addrsA, a)
		addrsB = append(addrsB, b)
	}

	for i, a := range addrsA {
		p.Fault(pidA, a)
		p.Fault(pidA, a)
		if err := sim.WriteByte(pidA, a, byte(pidA)); err != nil {
			return nil, err
		}
		b := addrsB[i]
		p.Fault(pidB, b)
		p.Fault(pidB, b)
		if err := sim.WriteByte(pidB, b, byte(pidB)); err != nil {
			return nil, err
		}
	}

	for i, a := range addrsA {
		p.Fault(pidA, a)
		got, err := sim.ReadByte(pidA, a)
		if err != nil {
			return nil, err
		}
		if got != byte(pidA) {
			return nil, fmt.Errorf("isolation: page %d: process A observed %d, want %d", i, got, pidA)
		}
		b := addrsB[i]
		p.Fault(pidB, b)
		got, err = sim.ReadByte(pidB, b)
		if err != nil {
			return nil, err
		}
		if got != byte(pidB) {
			return nil, fmt.Errorf("isolation: page %d: process B observed %d, want %d", i, got, pidB)
		}
	}

	fmt.Println("isolation: ok")
	return []mem.PID{pidA, pidB}, nil
}
