package sif

// Depth is the capacity of each SIF FIFO in words.
const Depth = 32

// A FIFO is a bounded ring of 32-bit words.
type FIFO struct {
	buf  [Depth]uint32
	head int
	n    int
}

// Reset empties the FIFO.
func (f *FIFO) Reset() {
	f.head = 0
	f.n = 0
}

// Len returns the number of buffered words.
func (f *FIFO) Len() int {
	return f.n
}

// Free returns the number of words that can still be pushed.
func (f *FIFO) Free() int {
	return Depth - f.n
}

// Push appends w. It returns false if the FIFO is full.
func (f *FIFO) Push(w uint32) bool {
	if f.n == Depth {
		return false
	}

	f.buf[(f.head+f.n)%Depth] = w
	f.n++

	return true
}

// Pop removes the oldest word. It returns false if the FIFO is empty.
func (f *FIFO) Pop() (uint32, bool) {
	if f.n == 0 {
		return 0, false
	}

	w := f.buf[f.head]
	f.head = (f.head + 1) % Depth
	f.n--

	return w, true
}
