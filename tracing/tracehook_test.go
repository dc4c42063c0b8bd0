package tracing

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ps2sim/config"
	"github.com/sarchlab/ps2sim/cpu"
	"github.com/sarchlab/ps2sim/dma"
	"github.com/sarchlab/ps2sim/hooking"
	"github.com/sarchlab/ps2sim/sched"
	"github.com/sarchlab/ps2sim/system"
)

type fixedClock uint64

func (c fixedClock) Now() uint64 { return uint64(c) }

type collector struct {
	records []Record
}

func (c *collector) Trace(r Record) {
	c.records = append(c.records, r)
}

var _ = Describe("CollectTrace", func() {
	var (
		domain *hooking.HookableBase
		c      *collector
	)

	BeforeEach(func() {
		domain = hooking.NewHookableBase()
		c = &collector{}
		CollectTrace(domain, c, fixedClock(1234))
	})

	It("should convert exceptions", func() {
		domain.InvokeHook(hooking.HookCtx{
			Pos: cpu.HookPosException,
			Item: &cpu.ExceptionInfo{
				Unit:   "ee",
				Code:   cpu.ExcSyscall,
				EPC:    0x00100010,
				Vector: 0x80000180,
			},
		})

		Expect(c.records).To(ConsistOf(ExceptionRecord{
			Cycle:  1234,
			Unit:   "ee",
			Code:   cpu.ExcSyscall.String(),
			EPC:    0x00100010,
			Vector: 0x80000180,
		}))
	})

	It("should convert DMA completions", func() {
		domain.InvokeHook(hooking.HookCtx{
			Pos: dma.HookPosTransferDone,
			Item: &dma.TransferInfo{
				Controller: "ee-dmac",
				Channel:    5,
				Name:       "sif0",
				Units:      8,
				Chain:      true,
			},
		})

		Expect(c.records).To(HaveLen(1))
		r := c.records[0].(TransferRecord)
		Expect(r.Cycle).To(Equal(uint64(1234)))
		Expect(r.Name).To(Equal("sif0"))
		Expect(r.Units).To(Equal(uint64(8)))
		Expect(r.Chain).To(BeTrue())
	})

	It("should convert scheduler events", func() {
		domain.InvokeHook(hooking.HookCtx{
			Pos:  sched.HookPosBeforeEvent,
			Item: sched.Event{Deadline: 1200, ID: 3, Name: "vblank-start"},
		})

		Expect(c.records).To(ConsistOf(EventRecord{
			Cycle: 1234, Deadline: 1200, ID: 3, Name: "vblank-start",
		}))
	})

	It("should convert faults", func() {
		domain.InvokeHook(hooking.HookCtx{
			Pos: system.HookPosFault,
			Item: system.FaultInfo{
				Unit: "iop", PC: 0xBFC00000, Err: errors.New("boom"),
			},
		})

		Expect(c.records).To(ConsistOf(FaultRecord{
			Cycle: 1234, Unit: "iop", PC: 0xBFC00000, Error: "boom",
		}))
	})

	It("should ignore untraced positions", func() {
		domain.InvokeHook(hooking.HookCtx{Pos: cpu.HookPosRetire})
		domain.InvokeHook(hooking.HookCtx{Pos: sched.HookPosAfterEvent})

		Expect(c.records).To(BeEmpty())
	})
})

var _ = Describe("CollectSystemTrace", func() {
	It("should record frames, events and vblank interrupts", func() {
		sys, err := system.New(config.Default(),
			system.WithBIOS([]byte{0xFF, 0xFF, 0x00, 0x10, 0, 0, 0, 0}))
		Expect(err).NotTo(HaveOccurred())

		counter := NewCountTracer()
		CollectSystemTrace(sys, counter)

		Expect(sys.RunFrame()).To(Succeed())

		Expect(counter.Count(KindFrame)).To(Equal(uint64(1)))
		Expect(counter.Count(KindEvent)).To(Equal(uint64(2)))
		Expect(counter.Count(KindInterrupt)).To(BeNumerically(">=", 4))
		Expect(counter.Count(KindFault)).To(BeZero())
	})
})
