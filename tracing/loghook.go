package tracing

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// A LogTracer writes every record to a logrus entry.
type LogTracer struct {
	log   *logrus.Entry
	level logrus.Level
	kinds map[string]bool
}

// NewLogTracer creates a LogTracer that logs at the given level. With no
// kinds given, every kind is logged.
func NewLogTracer(
	log *logrus.Entry,
	level logrus.Level,
	kinds ...string,
) *LogTracer {
	t := &LogTracer{log: log, level: level}

	if len(kinds) > 0 {
		t.kinds = make(map[string]bool)
		for _, k := range kinds {
			t.kinds[k] = true
		}
	}

	return t
}

// Trace logs the record.
func (t *LogTracer) Trace(r Record) {
	if t.kinds != nil && !t.kinds[r.Kind()] {
		return
	}

	if !t.log.Logger.IsLevelEnabled(t.level) {
		return
	}

	t.log.WithFields(fieldsOf(r)).Log(t.level, r.Kind())
}

func fieldsOf(r Record) logrus.Fields {
	switch r := r.(type) {
	case ExceptionRecord:
		return logrus.Fields{
			"cycle":  r.Cycle,
			"unit":   r.Unit,
			"code":   r.Code,
			"epc":    hex(r.EPC),
			"vector": hex(r.Vector),
			"delay":  r.Delay,
		}
	case SyscallRecord:
		return logrus.Fields{
			"cycle":  r.Cycle,
			"unit":   r.Unit,
			"pc":     hex(r.PC),
			"number": r.Number,
			"name":   r.Name,
		}
	case TransferRecord:
		return logrus.Fields{
			"cycle":      r.Cycle,
			"controller": r.Controller,
			"channel":    r.Name,
			"units":      r.Units,
			"chain":      r.Chain,
		}
	case InterruptRecord:
		return logrus.Fields{
			"cycle":      r.Cycle,
			"controller": r.Controller,
			"source":     r.Source,
		}
	case MailboxRecord:
		return logrus.Fields{
			"cycle":    r.Cycle,
			"from_iop": r.FromIOP,
			"reg":      hex(r.Reg),
			"value":    hex(r.Value),
		}
	case EventRecord:
		return logrus.Fields{
			"cycle":    r.Cycle,
			"deadline": r.Deadline,
			"event":    r.Name,
		}
	case FrameRecord:
		return logrus.Fields{
			"frame":       r.Frame,
			"cycles":      r.Cycles,
			"ee_retired":  r.EERetired,
			"iop_retired": r.IOPRetired,
			"ee_pc":       hex(r.EEPC),
			"iop_pc":      hex(r.IOPPC),
		}
	case FaultRecord:
		return logrus.Fields{
			"cycle": r.Cycle,
			"unit":  r.Unit,
			"pc":    hex(r.PC),
			"error": r.Error,
		}
	}

	return logrus.Fields{}
}

func hex(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}
