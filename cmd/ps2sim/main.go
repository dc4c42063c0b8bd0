// Command ps2sim boots a PS2 BIOS, and optionally a game executable, on the
// emulated Emotion Engine and I/O processor.
package main

func main() {
	Execute()
}
