package system

import "sync"

// Runner drives a System from one goroutine while letting others pause it,
// resume it and inspect it between frames.
type Runner struct {
	sys *System

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewRunner wraps sys.
func NewRunner(sys *System) *Runner {
	return &Runner{sys: sys}
}

// Run emulates frames until frames have completed or a frame fails. A
// negative count runs until an error.
func (r *Runner) Run(frames int) error {
	r.singleRunLock.Lock()
	defer r.singleRunLock.Unlock()

	for i := 0; frames < 0 || i < frames; i++ {
		r.pauseLock.Lock()
		err := r.sys.RunFrame()
		r.pauseLock.Unlock()

		if err != nil {
			return err
		}
	}

	return nil
}

// Pause stops the driving goroutine before its next frame.
func (r *Runner) Pause() {
	r.isPausedLock.Lock()
	defer r.isPausedLock.Unlock()

	if r.isPaused {
		return
	}

	r.pauseLock.Lock()
	r.isPaused = true
}

// Continue lets a paused runner proceed.
func (r *Runner) Continue() {
	r.isPausedLock.Lock()
	defer r.isPausedLock.Unlock()

	if !r.isPaused {
		return
	}

	r.pauseLock.Unlock()
	r.isPaused = false
}

// Paused reports whether the runner is paused.
func (r *Runner) Paused() bool {
	r.isPausedLock.Lock()
	defer r.isPausedLock.Unlock()

	return r.isPaused
}

// Inspect calls f with the system while no frame is running.
func (r *Runner) Inspect(f func(*System)) {
	r.isPausedLock.Lock()
	if r.isPaused {
		defer r.isPausedLock.Unlock()
		f(r.sys)

		return
	}
	r.isPausedLock.Unlock()

	r.pauseLock.Lock()
	defer r.pauseLock.Unlock()

	f(r.sys)
}
