package cpu

import (
	"errors"
	"fmt"
)

// ErrUnimplemented is matched by every UnimplementedError.
var ErrUnimplemented = errors.New("unimplemented instruction")

// UnimplementedError reports an instruction that no handler decodes.
type UnimplementedError struct {
	Unit string
	PC   uint32
	Inst Instruction
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("%s: unimplemented instruction at 0x%08x: %s",
		e.Unit, e.PC, e.Inst)
}

// Is makes errors.Is(err, ErrUnimplemented) hold.
func (e *UnimplementedError) Is(target error) bool {
	return target == ErrUnimplemented
}
