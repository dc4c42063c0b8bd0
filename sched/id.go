package sched

import "sync/atomic"

// ID names a cancellable event. The zero ID is anonymous.
type ID uint64

type idGenerator struct {
	next uint64
}

func (g *idGenerator) generate() ID {
	return ID(atomic.AddUint64(&g.next, 1))
}
