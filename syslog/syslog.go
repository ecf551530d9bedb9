// Package syslog implements the pager's diagnostic copy-out path: given a
// virtual range in a process's address space, fault each covered page
// resident, copy its bytes into a private buffer, and hex-dump that
// buffer to a writer.
package syslog

import (
	"encoding/hex"
	"fmt"
	"io"

	"mempager/mem"
	"mempager/pagererr"
	"mempager/util"
)

// PageSource is the narrow view into a process's address space that
// CopyOut needs: how many pages it has, a way to bring a given page
// resident (without ever dirtying it), and the physical memory it can
// then be read out of. vm.Space implements this so syslog never has to
// import the fault state machine directly.
type PageSource interface {
	PageCount(pid mem.PID) (int, bool)
	EnsureResident(pid mem.PID, page int) (mem.FrameNo, error)
	Pmem() []byte
	PageSizeBytes() int
	BaseAddr() mem.Vaddr_t
}

// CopyOut reads length bytes starting at addr from pid's address space
// and writes a hex dump of them to w. A length of zero is a successful
// no-op beyond validating pid: no bytes are read and nothing is written,
// not even a trailing newline. Any address range not entirely within
// pid's allocated pages is a caller error.
func CopyOut(w io.Writer, src PageSource, pid mem.PID, addr mem.Vaddr_t, length int) error {
	npages, ok := src.PageCount(pid)
	if !ok {
		return pagererr.ErrInvalidArgument
	}
	if length == 0 {
		return nil
	}

	base := src.BaseAddr()
	pagesize := src.PageSizeBytes()
	if addr < base {
		return pagererr.ErrInvalidArgument
	}
	regionEnd := base + mem.Vaddr_t(npages*pagesize)
	end := addr + mem.Vaddr_t(length)
	if end > regionEnd || end < addr {
		return pagererr.ErrInvalidArgument
	}

	buf := make([]byte, length)
	pmem := src.Pmem()

	cur := addr
	off := 0
	for off < length {
		pidx := int(cur-base) / pagesize
		pageOff := int(cur-base) % pagesize
		chunk := util.Min(pagesize-pageOff, length-off)

		frame, err := src.EnsureResident(pid, pidx)
		if err != nil {
			return err
		}

		start := int(frame)*pagesize + pageOff
		copy(buf[off:off+chunk], pmem[start:start+chunk])

		off += chunk
		cur += mem.Vaddr_t(chunk)
	}

	return hexDump(w, buf)
}

// hexDump writes buf as lowercase hex pairs followed by a single trailing
// newline. CopyOut only calls it with a non-empty buffer, so the newline
// is unconditional here but the caller's length == 0 early return is what
// keeps a zero-length syslog call silent.
func hexDump(w io.Writer, buf []byte) error {
	encoded := hex.EncodeToString(buf)
	_, err := fmt.Fprintln(w, encoded)
	return err
}
