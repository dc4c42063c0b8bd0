package eedma

import "github.com/sirupsen/logrus"

// Load reads a DMAC register.
func (d *DMAC) Load(addr uint32, _ int) uint64 {
	addr &^= 0xF

	switch addr {
	case DCTRL:
		return uint64(d.ctrl)
	case DSTAT:
		return uint64(d.stat)
	case DPCR:
		return uint64(d.pcr)
	case DSQWC:
		return uint64(d.sqwc)
	case DRBSR:
		return uint64(d.rbsr)
	case DRBOR:
		return uint64(d.rbor)
	case DSTADR:
		return uint64(d.stadr)
	case DENABLER:
		return uint64(d.enable)
	}

	if i, ok := channelAt(addr); ok {
		return uint64(d.ch[i].read(addr & 0xF0))
	}

	d.log.Debugf("read of unknown register 0x%08x", addr)

	return 0
}

// Store writes a DMAC register.
func (d *DMAC) Store(addr uint32, _ int, v uint64) {
	addr &^= 0xF
	w := uint32(v)

	switch addr {
	case DCTRL:
		d.ctrl = w
	case DSTAT:
		d.WriteStat(w)
	case DPCR:
		d.pcr = w
	case DSQWC:
		d.sqwc = w
	case DRBSR:
		d.rbsr = w
	case DRBOR:
		d.rbor = w
	case DSTADR:
		d.stadr = w
	case DENABLEW:
		d.enable = w
	default:
		d.storeChannel(addr, w)
	}
}

// WriteStat clears the CIS bits written as one and reverses the CIM bits
// written as one.
func (d *DMAC) WriteStat(v uint32) {
	d.stat &^= v & statW1CMask
	d.stat ^= v & statCIMMask
}

func (d *DMAC) storeChannel(addr, v uint32) {
	i, ok := channelAt(addr)
	if !ok {
		d.log.Debugf("write of unknown register 0x%08x", addr)
		return
	}

	c := &d.ch[i]
	if c.write(addr&0xF0, v) {
		d.log.WithFields(logrus.Fields{
			"channel": c.name,
			"mode":    c.mode(),
			"madr":    c.madr,
			"qwc":     c.qwc,
			"tadr":    c.tadr,
		}).Debug("transfer started")
	}
}

func channelAt(addr uint32) (int, bool) {
	block := addr &^ 0x3FF
	for i, desc := range channelDescs {
		if desc.base == block {
			return i, true
		}
	}

	return 0, false
}
