package system

import "github.com/sirupsen/logrus"

// An Option customizes a System built by New.
type Option func(*System)

// WithBIOS supplies the BIOS image instead of reading cfg.BIOSPath.
func WithBIOS(image []byte) Option {
	return func(s *System) {
		s.bios = image
	}
}

// WithLogger sets the logger every component derives its entry from.
func WithLogger(log *logrus.Entry) Option {
	return func(s *System) {
		s.log = log
	}
}
