package tracing

import "sync"

// CountTracer counts records per kind and, for syscalls, per name.
type CountTracer struct {
	lock     sync.Mutex
	kinds    []string
	count    map[string]uint64
	syscalls map[string]uint64
}

// NewCountTracer creates a new CountTracer.
func NewCountTracer() *CountTracer {
	return &CountTracer{
		count:    make(map[string]uint64),
		syscalls: make(map[string]uint64),
	}
}

// Trace counts the record.
func (t *CountTracer) Trace(r Record) {
	t.lock.Lock()
	defer t.lock.Unlock()

	k := r.Kind()
	if _, ok := t.count[k]; !ok {
		t.kinds = append(t.kinds, k)
	}
	t.count[k]++

	if s, ok := r.(SyscallRecord); ok {
		t.syscalls[s.Name]++
	}
}

// Kinds returns the kinds seen, in order of first appearance.
func (t *CountTracer) Kinds() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]string(nil), t.kinds...)
}

// Count returns the number of records of a kind.
func (t *CountTracer) Count(kind string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count[kind]
}

// SyscallCount returns how many times a named system call was made.
func (t *CountTracer) SyscallCount(name string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.syscalls[name]
}
