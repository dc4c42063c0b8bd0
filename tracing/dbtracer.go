package tracing

import (
	"fmt"
	"sync"

	"github.com/sarchlab/ps2sim/datarecording"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"
)

// TablePrefix is prepended to the kind to name each record table.
const TablePrefix = "trace_"

// DBTracer stores records into a data recorder, one table per kind.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder
	log     *logrus.Entry
	kinds   map[string]bool
	stopped bool
	errs    int
}

// NewDBTracer creates the record tables and registers a flush on exit. With
// no kinds given, every kind is recorded.
func NewDBTracer(
	recorder datarecording.DataRecorder,
	log *logrus.Entry,
	kinds ...string,
) (*DBTracer, error) {
	if len(kinds) == 0 {
		kinds = Kinds
	}

	t := &DBTracer{
		backend: recorder,
		log:     log,
		kinds:   make(map[string]bool),
	}

	for _, k := range kinds {
		sample, ok := sampleRecords[k]
		if !ok {
			return nil, fmt.Errorf("unknown record kind %q", k)
		}

		if err := recorder.CreateTable(TableName(k), sample); err != nil {
			return nil, fmt.Errorf("creating %s table: %w", k, err)
		}

		t.kinds[k] = true
	}

	atexit.Register(t.Terminate)

	return t, nil
}

// TableName returns the table that holds records of a kind.
func TableName(kind string) string {
	return TablePrefix + kind
}

// Trace buffers the record for writing.
func (t *DBTracer) Trace(r Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || !t.kinds[r.Kind()] {
		return
	}

	if err := t.backend.InsertData(TableName(r.Kind()), r); err != nil {
		t.errs++
		t.log.WithError(err).Warn("dropping trace record")
	}
}

// Errors returns how many records failed to be written.
func (t *DBTracer) Errors() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.errs
}

// Flush writes buffered records.
func (t *DBTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.backend.Flush()
}

// Terminate flushes the recorder and stops accepting records.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	t.stopped = true

	if err := t.backend.Flush(); err != nil {
		t.log.WithError(err).Error("flushing trace")
	}
}
