package iopdma

import "github.com/sarchlab/ps2sim/dma"

// Channel indices.
const (
	MDECIn = iota
	MDECOut
	GPU
	CDVD
	SPU2Core0
	PIO
	OTC
	SPU2Core1
	DEV9
	SIF0
	SIF1
	SIO2In
	SIO2Out
	Ch13
	NumChannels
)

// Register offsets inside a channel block.
const (
	RegMADR = 0x0
	RegBCR  = 0x4
	RegCHCR = 0x8
	RegTADR = 0xC
)

// CHCR fields.
const (
	CHCRFromRAM   = 1 << 0
	CHCRTagFwd    = 1 << 8
	CHCRSyncShift = 9
	CHCRStart     = 1 << 24
)

// Sync modes selected by CHCR bits 9-10.
const (
	SyncBurst = iota
	SyncSlice
	SyncLinkedList
	SyncChain
)

const (
	bank0Base = 0x1F801080
	bank1Base = 0x1F801500
	bankSize  = 7 * 0x10
	addrMask  = 0x00FFFFFF
	tagIRQ    = 1 << 30
	tagEnd    = 1 << 31
)

var channelNames = [NumChannels]string{
	"mdecIn", "mdecOut", "gpu", "cdvd", "spu2c0", "pio", "otc",
	"spu2c1", "dev9", "sif0", "sif1", "sio2in", "sio2out", "ch13",
}

// ChannelName returns the name of channel i.
func ChannelName(i int) string {
	return channelNames[i]
}

// ChannelBase returns the register block address of channel i.
func ChannelBase(i int) uint32 {
	if i < 7 {
		return bank0Base + uint32(i)*0x10
	}

	return bank1Base + uint32(i-7)*0x10
}

func channelAt(addr uint32) (int, bool) {
	switch {
	case addr >= bank0Base && addr < bank0Base+bankSize:
		return int(addr-bank0Base) >> 4, true
	case addr >= bank1Base && addr < bank1Base+bankSize:
		return 7 + int(addr-bank1Base)>>4, true
	}

	return 0, false
}

type channel struct {
	name string
	port dma.WordPort

	madr uint32
	bcr  uint32
	chcr uint32
	tadr uint32

	remaining uint32
	blockLeft uint32
	end       bool
	fwd       []uint32
	header    []uint32
	units     uint64
}

func (c *channel) reset() {
	c.madr, c.bcr, c.chcr, c.tadr = 0, 0, 0, 0
	c.restart()
}

func (c *channel) restart() {
	c.remaining = 0
	c.blockLeft = 0
	c.end = false
	c.fwd = c.fwd[:0]
	c.header = c.header[:0]
	c.units = 0

	size := c.bcr & 0xFFFF
	count := c.bcr >> 16

	switch c.sync() {
	case SyncBurst:
		if size == 0 {
			size = 0x10000
		}

		if count == 0 {
			count = 1
		}

		c.remaining = size * count
	case SyncSlice:
		c.remaining = size * count
		c.blockLeft = size
	}
}

func (c *channel) running() bool {
	return c.chcr&CHCRStart != 0
}

func (c *channel) sync() uint32 {
	return (c.chcr >> CHCRSyncShift) & 3
}

func (c *channel) fromRAM() bool {
	return c.chcr&CHCRFromRAM != 0
}

func (c *channel) read(reg uint32) uint32 {
	switch reg {
	case RegMADR:
		return c.madr
	case RegBCR:
		return c.bcr
	case RegCHCR:
		return c.chcr
	case RegTADR:
		return c.tadr
	}

	return 0
}

// write returns true when the write sets START on an idle channel.
func (c *channel) write(reg, v uint32) bool {
	switch reg {
	case RegMADR:
		c.madr = v & addrMask
	case RegBCR:
		c.bcr = v
	case RegCHCR:
		started := v&CHCRStart != 0 && !c.running()
		c.chcr = v
		if started {
			c.restart()
		}

		return started
	case RegTADR:
		c.tadr = v & addrMask
	}

	return false
}
