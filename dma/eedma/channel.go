package eedma

import "github.com/sarchlab/ps2sim/dma"

// Channel indices, matching the D_STAT bit of each channel.
const (
	VIF0 = iota
	VIF1
	GIF
	FromIPU
	ToIPU
	SIF0
	SIF1
	SIF2
	FromSPR
	ToSPR
	NumChannels
)

// Register offsets inside a channel block.
const (
	RegCHCR = 0x00
	RegMADR = 0x10
	RegQWC  = 0x20
	RegTADR = 0x30
	RegASR0 = 0x40
	RegASR1 = 0x50
	RegSADR = 0x80
)

// CHCR fields.
const (
	CHCRDir      = 1 << 0
	CHCRModShift = 2
	CHCRASPShift = 4
	CHCRTTE      = 1 << 6
	CHCRTIE      = 1 << 7
	CHCRSTR      = 1 << 8
)

// Transfer modes selected by CHCR.MOD.
const (
	ModeNormal = iota
	ModeChain
	ModeInterleave
)

// Source chain tag IDs.
const (
	TagREFE = iota
	TagCNT
	TagNEXT
	TagREF
	TagREFS
	TagCALL
	TagRET
	TagEND
)

// Destination chain tag IDs.
const (
	TagCNTS = 0
	TagDCNT = 1
	TagDEND = 7
)

type direction int

const (
	dirFromCHCR direction = iota
	dirToMemory
	dirFromMemory
)

type channelDesc struct {
	name string
	base uint32
	dir  direction
}

var channelDescs = [NumChannels]channelDesc{
	{"vif0", 0x10008000, dirFromCHCR},
	{"vif1", 0x10009000, dirFromCHCR},
	{"gif", 0x1000A000, dirFromMemory},
	{"fromIPU", 0x1000B000, dirToMemory},
	{"toIPU", 0x1000B400, dirFromMemory},
	{"sif0", 0x1000C000, dirToMemory},
	{"sif1", 0x1000C400, dirFromMemory},
	{"sif2", 0x1000C800, dirFromCHCR},
	{"fromSPR", 0x1000D000, dirToMemory},
	{"toSPR", 0x1000D400, dirFromMemory},
}

// ChannelName returns the name of channel i.
func ChannelName(i int) string {
	return channelDescs[i].name
}

// ChannelBase returns the register block address of channel i.
func ChannelBase(i int) uint32 {
	return channelDescs[i].base
}

type channel struct {
	channelDesc

	port dma.QuadPort

	chcr uint32
	madr uint32
	qwc  uint32
	tadr uint32
	asr  [2]uint32
	sadr uint32

	tagEnd     bool
	ttePending bool
	tteQuad    uint64
	units      uint64
}

func (c *channel) reset() {
	c.chcr, c.madr, c.qwc, c.tadr, c.sadr = 0, 0, 0, 0, 0
	c.asr = [2]uint32{}
	c.restart()
}

func (c *channel) restart() {
	c.tagEnd = false
	c.ttePending = false
	c.units = 0
}

func (c *channel) running() bool {
	return c.chcr&CHCRSTR != 0
}

func (c *channel) mode() uint32 {
	return (c.chcr >> CHCRModShift) & 3
}

func (c *channel) asp() uint32 {
	return (c.chcr >> CHCRASPShift) & 3
}

func (c *channel) setASP(n uint32) {
	c.chcr = c.chcr&^(3<<CHCRASPShift) | (n&3)<<CHCRASPShift
}

func (c *channel) fromMemory() bool {
	switch c.dir {
	case dirToMemory:
		return false
	case dirFromMemory:
		return true
	}

	return c.chcr&CHCRDir != 0
}

func (c *channel) read(reg uint32) uint32 {
	switch reg {
	case RegCHCR:
		return c.chcr
	case RegMADR:
		return c.madr
	case RegQWC:
		return c.qwc
	case RegTADR:
		return c.tadr
	case RegASR0:
		return c.asr[0]
	case RegASR1:
		return c.asr[1]
	case RegSADR:
		return c.sadr
	}

	return 0
}

// write returns true when the write sets STR on an idle channel.
func (c *channel) write(reg, v uint32) bool {
	switch reg {
	case RegCHCR:
		started := v&CHCRSTR != 0 && !c.running()
		c.chcr = v
		if started {
			c.restart()
		}

		return started
	case RegMADR:
		c.madr = v &^ 0xF
	case RegQWC:
		c.qwc = v & 0xFFFF
	case RegTADR:
		c.tadr = v &^ 0xF
	case RegASR0:
		c.asr[0] = v &^ 0xF
	case RegASR1:
		c.asr[1] = v &^ 0xF
	case RegSADR:
		c.sadr = v & 0x3FF0
	}

	return false
}
