package vm

import "mempager/mem"

// Registry tracks the set of processes known to the pager. Lookups here
// always happen under the pager's single mutex, with no nested locking
// and no per-process locks, so a plain map is the right tool; there is
// no concurrent-access problem here that a lock-free structure would
// need to solve.
type Registry struct {
	procs map[mem.PID]*Proc_t
}

// NewRegistry returns an empty process registry.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[mem.PID]*Proc_t)}
}

// Create registers pid with an empty address space. It is a no-op if pid
// is already registered.
func (r *Registry) Create(pid mem.PID) {
	if _, ok := r.procs[pid]; ok {
		return
	}
	r.procs[pid] = &Proc_t{Pid: pid}
}

// Lookup returns pid's process record, or false if it is unknown.
func (r *Registry) Lookup(pid mem.PID) (*Proc_t, bool) {
	p, ok := r.procs[pid]
	return p, ok
}

// Destroy removes pid from the registry entirely. The caller is
// responsible for releasing any frames and blocks the process held first.
func (r *Registry) Destroy(pid mem.PID) {
	delete(r.procs, pid)
}

// Len reports how many processes are currently registered.
func (r *Registry) Len() int {
	return len(r.procs)
}
