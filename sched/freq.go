package sched

import "math"

// Freq defines the type of frequency.
type Freq float64

// Defines the unit of frequency.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
)

// Clock domains of the console. The scheduler counts EE cycles.
const (
	EEClock  Freq = 294.912 * MHz
	BusClock      = EEClock / 2
	IOPClock      = EEClock / 8

	// NTSCFrameRate is 60000/1001 frames per second.
	NTSCFrameRate Freq = 60000.0 / 1001
)

// Period returns the time in seconds between two consecutive ticks.
func (f Freq) Period() float64 {
	if f == 0 {
		panic("frequency cannot be 0")
	}

	return 1.0 / float64(f)
}

// Cycles converts a duration in seconds to the nearest number of ticks.
func (f Freq) Cycles(seconds float64) uint64 {
	return uint64(math.Round(seconds * float64(f)))
}

// Seconds converts a number of ticks to a duration.
func (f Freq) Seconds(cycles uint64) float64 {
	return float64(cycles) * f.Period()
}

// CyclesPer returns how many whole ticks of f fit into one tick of g.
func (f Freq) CyclesPer(g Freq) uint64 {
	if g == 0 {
		panic("frequency cannot be 0")
	}

	return uint64(f / g)
}
