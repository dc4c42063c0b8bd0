package datarecording

import (
	"os"
	"strings"
	"time"
)

// SessionTable is the table that holds session properties.
const SessionTable = "session_info"

// SessionInfo is one property of an emulation session.
type SessionInfo struct {
	Property string
	Value    string
}

// SessionRecorder records when and how a session ran: command line, boot
// images, start and end times.
type SessionRecorder struct {
	recorder DataRecorder
	entries  []SessionInfo
}

// NewSessionRecorder creates the session table on recorder.
func NewSessionRecorder(recorder DataRecorder) (*SessionRecorder, error) {
	if err := recorder.CreateTable(SessionTable, SessionInfo{}); err != nil {
		return nil, err
	}

	return &SessionRecorder{recorder: recorder}, nil
}

// Set adds a property.
func (s *SessionRecorder) Set(property, value string) {
	s.entries = append(s.entries, SessionInfo{property, value})
}

// Start records the start time and the command line.
func (s *SessionRecorder) Start() {
	s.Set("Start Time", now())
	s.Set("Command", strings.Join(os.Args, " "))

	if wd, err := os.Getwd(); err == nil {
		s.Set("Working Directory", wd)
	}
}

// End writes all properties along with the end time and flushes.
func (s *SessionRecorder) End() error {
	s.Set("End Time", now())

	for _, entry := range s.entries {
		if err := s.recorder.InsertData(SessionTable, entry); err != nil {
			return err
		}
	}

	s.entries = nil

	return s.recorder.Flush()
}

func now() string {
	return time.Now().Format("2006-01-02 15:04:05.000000000")
}
