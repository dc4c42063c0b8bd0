package iopdma

import "github.com/sirupsen/logrus"

// Load reads a DMAC register.
func (d *DMAC) Load(addr uint32, width int) uint64 {
	var v uint32

	switch addr &^ 3 {
	case DPCR:
		v = d.dpcr
	case DICR:
		v = d.dicr
	case DPCR2:
		v = d.dpcr2
	case DICR2:
		v = d.dicr2
	default:
		i, ok := channelAt(addr)
		if !ok {
			d.log.Debugf("read of unknown register 0x%08x", addr)
			return 0
		}

		v = d.ch[i].read(addr & 0xC)
	}

	return uint64(v >> ((addr & 3) * 8))
}

// Store writes a DMAC register. Narrow writes merge into the current value.
// The interrupt flags of bytes not written are never cleared.
func (d *DMAC) Store(addr uint32, width int, v uint64) {
	w := uint32(v)

	switch addr &^ 3 {
	case DPCR:
		d.dpcr = merge(d.dpcr, addr, width, w)
	case DICR:
		d.WriteDICR(merge(d.dicr&^dicrFlags, addr, width, w))
	case DPCR2:
		d.dpcr2 = merge(d.dpcr2, addr, width, w)
	case DICR2:
		d.WriteDICR2(merge(d.dicr2&^dicrFlags, addr, width, w))
	default:
		d.storeChannel(addr, width, w)
	}
}

func merge(cur, addr uint32, width int, v uint32) uint32 {
	if width >= 4 {
		return v
	}

	shift := (addr & 3) * 8
	mask := uint32(1)<<(uint(width)*8) - 1

	return cur&^(mask<<shift) | (v&mask)<<shift
}

// WriteDICR writes the primary interrupt register: flags written as one are
// cleared and the master flag is recomputed.
func (d *DMAC) WriteDICR(v uint32) {
	flags := d.dicr & dicrFlags &^ (v & dicrFlags)
	d.dicr = v&dicrWritable | flags | d.dicr&DICRMasterFlag
	d.updateMaster()
}

// WriteDICR2 writes the secondary interrupt register.
func (d *DMAC) WriteDICR2(v uint32) {
	flags := d.dicr2 & dicrFlags &^ (v & dicrFlags)
	d.dicr2 = v&dicrWritable | flags
	d.updateMaster()
}

func (d *DMAC) storeChannel(addr uint32, width int, v uint32) {
	i, ok := channelAt(addr)
	if !ok {
		d.log.Debugf("write of unknown register 0x%08x", addr)
		return
	}

	c := &d.ch[i]
	reg := addr & 0xC
	v = merge(c.read(reg), addr, width, v)

	if c.write(reg, v) {
		d.log.WithFields(logrus.Fields{
			"channel": c.name,
			"sync":    c.sync(),
			"madr":    c.madr,
			"bcr":     c.bcr,
			"tadr":    c.tadr,
		}).Debug("transfer started")
	}
}
