// Package sched provides the cycle scheduler that paces peripherals against
// the processors.
//
// The scheduler keeps one-shot events sorted by absolute deadline. Events with
// equal deadlines fire in the order they were added. A recurring event adds
// itself again from its callback.
package sched

import (
	"slices"
	"sort"

	"github.com/sarchlab/ps2sim/hooking"
)

// HookPosBeforeEvent is invoked before an event callback runs. The item is
// the Event.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is invoked after an event callback returns.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

// Callback is the action of an event.
type Callback func()

// Event is a scheduled callback.
type Event struct {
	Deadline uint64
	ID       ID
	Name     string

	cb Callback
}

// Scheduler is a cycle counter plus a deadline ordered list of events.
type Scheduler struct {
	*hooking.HookableBase

	now    uint64
	events []Event
	ids    idGenerator
}

// New creates an empty Scheduler at cycle zero.
func New() *Scheduler {
	return &Scheduler{
		HookableBase: hooking.NewHookableBase(),
	}
}

// Name returns the component name.
func (s *Scheduler) Name() string {
	return "scheduler"
}

// Reset drops every event and rewinds the counter.
func (s *Scheduler) Reset() {
	s.now = 0
	s.events = s.events[:0]
}

// Now returns the current cycle.
func (s *Scheduler) Now() uint64 {
	return s.now
}

// Tick advances the counter. Due events run on the next RunEvents.
func (s *Scheduler) Tick(cycles uint64) {
	s.now += cycles
}

// Len returns the number of pending events.
func (s *Scheduler) Len() int {
	return len(s.events)
}

// NewID returns an ID that no other event uses.
func (s *Scheduler) NewID() ID {
	return s.ids.generate()
}

// Add schedules an anonymous event delay cycles from now.
func (s *Scheduler) Add(delay uint64, cb Callback) {
	s.insert(Event{Deadline: s.now + delay, cb: cb})
}

// AddWithID schedules an event that can later be cancelled by id.
func (s *Scheduler) AddWithID(delay uint64, id ID, cb Callback) {
	s.insert(Event{Deadline: s.now + delay, ID: id, cb: cb})
}

// AddNamed is AddWithID with a name that hooks and tracers can report.
func (s *Scheduler) AddNamed(delay uint64, id ID, name string, cb Callback) {
	s.insert(Event{Deadline: s.now + delay, ID: id, Name: name, cb: cb})
}

func (s *Scheduler) insert(e Event) {
	i := sort.Search(len(s.events), func(k int) bool {
		return s.events[k].Deadline > e.Deadline
	})
	s.events = slices.Insert(s.events, i, e)
}

// Cancel removes the pending events with the given id. Cancelling an id that
// is not pending does nothing.
func (s *Scheduler) Cancel(id ID) {
	if id == 0 {
		return
	}

	s.events = slices.DeleteFunc(s.events, func(e Event) bool {
		return e.ID == id
	})
}

// Pending reports whether an event with the given id is scheduled.
func (s *Scheduler) Pending(id ID) bool {
	return slices.ContainsFunc(s.events, func(e Event) bool {
		return id != 0 && e.ID == id
	})
}

// NextDeadline returns the deadline of the earliest event.
func (s *Scheduler) NextDeadline() (uint64, bool) {
	if len(s.events) == 0 {
		return 0, false
	}

	return s.events[0].Deadline, true
}

// RunEvents fires every event whose deadline has passed, earliest first. An
// event is removed before its callback runs, so callbacks may add or cancel
// events freely.
func (s *Scheduler) RunEvents() {
	for len(s.events) > 0 && s.events[0].Deadline <= s.now {
		e := s.events[0]
		s.events = slices.Delete(s.events, 0, 1)

		ctx := hooking.HookCtx{Domain: s, Pos: HookPosBeforeEvent, Item: e}
		s.InvokeHook(ctx)

		e.cb()

		ctx.Pos = HookPosAfterEvent
		s.InvokeHook(ctx)
	}
}
