package system

import (
	"debug/elf"
	"fmt"
	"io"

	"github.com/sarchlab/ps2sim/mem"
)

// loadELF copies the PT_LOAD segments of a 32-bit little-endian MIPS ELF into
// EE RAM and returns its entry point.
func (s *System) loadELF(path string) (uint32, error) {
	f, err := elf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 || f.Data != elf.ELFDATA2LSB || f.Machine != elf.EM_MIPS {
		return 0, fmt.Errorf("%s: not a 32-bit little-endian MIPS executable", path)
	}

	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Memsz == 0 {
			continue
		}

		if err := s.loadSegment(p); err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
	}

	return uint32(f.Entry), nil
}

func (s *System) loadSegment(p *elf.Prog) error {
	base := mem.TranslateEE(uint32(p.Vaddr))
	end := uint64(base) + p.Memsz

	if end > mem.EERAMSize || p.Filesz > p.Memsz {
		return fmt.Errorf("segment 0x%08x+0x%x does not fit in RAM", p.Vaddr, p.Memsz)
	}

	dst := s.eeRAM[base:end]
	if _, err := io.ReadFull(p.Open(), dst[:p.Filesz]); err != nil {
		return fmt.Errorf("reading segment 0x%08x: %w", p.Vaddr, err)
	}

	clear(dst[p.Filesz:])

	s.log.WithField("component", "loader").Debugf(
		"segment 0x%08x: 0x%x bytes from file, 0x%x in memory",
		p.Vaddr, p.Filesz, p.Memsz)

	return nil
}
