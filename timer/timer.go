// Package timer implements the EE and IOP hardware timers. Both are advanced
// in bulk by the System with Run(cycles); counts are computed arithmetically
// between events rather than tick by tick.
package timer

type event int

const (
	evNone event = iota
	evTarget
	evWrap
)

// advance moves count toward the next target match or wrap at limit,
// consuming at most n ticks. It returns the new count, the ticks consumed and
// the event reached, if any.
func advance(count, target, limit, n uint64) (uint64, uint64, event) {
	next := limit - count
	ev := evWrap

	if target > count && target-count <= next {
		next = target - count
		ev = evTarget
	}

	if n < next {
		return count + n, n, evNone
	}

	count += next
	if ev == evWrap {
		count = 0
	}

	return count, next, ev
}

// prescaler divides an input clock.
type prescaler struct {
	acc uint64
}

func (p *prescaler) ticks(cycles, div uint64) uint64 {
	if div <= 1 {
		return cycles
	}

	p.acc += cycles
	t := p.acc / div
	p.acc %= div

	return t
}
