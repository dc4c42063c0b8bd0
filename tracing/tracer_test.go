package tracing

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/ps2sim/datarecording"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var _ = Describe("CountTracer", func() {
	It("should count by kind and syscall name", func() {
		t := NewCountTracer()

		t.Trace(SyscallRecord{Name: "FlushCache"})
		t.Trace(SyscallRecord{Name: "FlushCache"})
		t.Trace(FrameRecord{Frame: 1})

		Expect(t.Kinds()).To(Equal([]string{KindSyscall, KindFrame}))
		Expect(t.Count(KindSyscall)).To(Equal(uint64(2)))
		Expect(t.Count(KindFault)).To(BeZero())
		Expect(t.SyscallCount("FlushCache")).To(Equal(uint64(2)))
	})
})

var _ = Describe("LogTracer", func() {
	var (
		logger *logrus.Logger
		hook   *test.Hook
	)

	BeforeEach(func() {
		logger, hook = test.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)
	})

	It("should log records with fields", func() {
		t := NewLogTracer(logrus.NewEntry(logger), logrus.InfoLevel)

		t.Trace(SyscallRecord{Unit: "ee", PC: 0x100, Number: 0x64, Name: "FlushCache"})

		Expect(hook.Entries).To(HaveLen(1))
		e := hook.LastEntry()
		Expect(e.Message).To(Equal(KindSyscall))
		Expect(e.Level).To(Equal(logrus.InfoLevel))
		Expect(e.Data["name"]).To(Equal("FlushCache"))
		Expect(e.Data["pc"]).To(Equal("0x00000100"))
	})

	It("should only log the selected kinds", func() {
		t := NewLogTracer(logrus.NewEntry(logger), logrus.InfoLevel, KindFault)

		t.Trace(FrameRecord{})
		t.Trace(FaultRecord{Unit: "ee", Error: "bad"})

		Expect(hook.Entries).To(HaveLen(1))
		Expect(hook.LastEntry().Data["error"]).To(Equal("bad"))
	})

	It("should skip disabled levels", func() {
		t := NewLogTracer(logrus.NewEntry(logger), logrus.TraceLevel)

		t.Trace(FrameRecord{})

		Expect(hook.Entries).To(BeEmpty())
	})
})

var _ = Describe("DBTracer", func() {
	var (
		db     *sql.DB
		rec    datarecording.DataRecorder
		tracer *DBTracer
	)

	BeforeEach(func() {
		var err error
		db, err = sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)

		logger, _ := test.NewNullLogger()
		rec = datarecording.NewWithDB(db)
		tracer, err = NewDBTracer(rec, logrus.NewEntry(logger))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(rec.Close()).To(Succeed())
	})

	count := func(kind string) int {
		var n int
		err := db.QueryRow("SELECT COUNT(*) FROM " + TableName(kind)).Scan(&n)
		Expect(err).NotTo(HaveOccurred())

		return n
	}

	It("should create one table per kind", func() {
		for _, k := range Kinds {
			Expect(rec.ListTables()).To(ContainElement(TableName(k)))
		}
	})

	It("should write records on flush", func() {
		tracer.Trace(ExceptionRecord{Cycle: 10, Unit: "ee", Code: "Syscall"})
		tracer.Trace(TransferRecord{Cycle: 11, Controller: "iop-dmac"})
		tracer.Trace(TransferRecord{Cycle: 12, Controller: "ee-dmac"})

		Expect(tracer.Flush()).To(Succeed())

		Expect(count(KindException)).To(Equal(1))
		Expect(count(KindTransfer)).To(Equal(2))
		Expect(count(KindFrame)).To(BeZero())
		Expect(tracer.Errors()).To(BeZero())
	})

	It("should stop recording after Terminate", func() {
		tracer.Trace(FrameRecord{Frame: 1})
		tracer.Terminate()
		tracer.Trace(FrameRecord{Frame: 2})
		tracer.Terminate()

		Expect(count(KindFrame)).To(Equal(1))
	})

	It("should reject unknown kinds", func() {
		_, err := NewDBTracer(rec, logrus.NewEntry(logrus.New()), "bogus")
		Expect(err).To(HaveOccurred())
	})
})
