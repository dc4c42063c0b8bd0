// Package config holds the settings of an emulation session. Values come from
// defaults, an optional .env file, the PS2SIM_* environment variables and,
// last, command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variable names.
const (
	EnvBIOS        = "PS2SIM_BIOS"
	EnvGame        = "PS2SIM_GAME"
	EnvLogLevel    = "PS2SIM_LOG_LEVEL"
	EnvQuantum     = "PS2SIM_QUANTUM"
	EnvTraceDB     = "PS2SIM_TRACE_DB"
	EnvMonitorPort = "PS2SIM_MONITOR_PORT"
	EnvHaltOnFault = "PS2SIM_HALT_ON_FAULT"
)

// FaultPolicy selects what a CPU fault stops.
type FaultPolicy string

// Fault policies.
const (
	// HaltCPU stops stepping the faulting interpreter only.
	HaltCPU FaultPolicy = "cpu"
	// HaltSession returns the fault from RunFrame.
	HaltSession FaultPolicy = "session"
)

// DefaultQuantum is the number of EE cycles run between scheduler ticks.
const DefaultQuantum = 32

// ErrInvalid is matched by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config is the session configuration.
type Config struct {
	BIOSPath    string
	GamePath    string
	LogLevel    logrus.Level
	Quantum     uint64
	TraceDB     string
	MonitorPort int
	HaltOnFault FaultPolicy
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:    logrus.InfoLevel,
		Quantum:     DefaultQuantum,
		HaltOnFault: HaltCPU,
	}
}

// Load returns the defaults overridden by the variables in envFile, if it
// exists, and then by the process environment.
func Load(envFile string) (Config, error) {
	fileVars := map[string]string{}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			fileVars, err = godotenv.Read(envFile)
			if err != nil {
				return Config{}, fmt.Errorf("reading %s: %w", envFile, err)
			}
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := fileVars[key]

		return v, ok
	}

	c := Default()
	if err := c.apply(lookup); err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c *Config) apply(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBIOS); ok {
		c.BIOSPath = v
	}

	if v, ok := lookup(EnvGame); ok {
		c.GamePath = v
	}

	if v, ok := lookup(EnvTraceDB); ok {
		c.TraceDB = v
	}

	if v, ok := lookup(EnvHaltOnFault); ok {
		c.HaltOnFault = FaultPolicy(v)
	}

	if v, ok := lookup(EnvLogLevel); ok {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvLogLevel, err)
		}

		c.LogLevel = level
	}

	if v, ok := lookup(EnvQuantum); ok {
		q, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvQuantum, err)
		}

		c.Quantum = q
	}

	if v, ok := lookup(EnvMonitorPort); ok {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvMonitorPort, err)
		}

		c.MonitorPort = p
	}

	return nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.BIOSPath == "":
		return fmt.Errorf("%w: a BIOS image is required", ErrInvalid)
	case c.Quantum == 0 || c.Quantum%8 != 0:
		return fmt.Errorf("%w: quantum %d is not a positive multiple of 8",
			ErrInvalid, c.Quantum)
	case c.MonitorPort < 0 || c.MonitorPort > 65535:
		return fmt.Errorf("%w: monitor port %d", ErrInvalid, c.MonitorPort)
	case c.HaltOnFault != HaltCPU && c.HaltOnFault != HaltSession:
		return fmt.Errorf("%w: fault policy %q", ErrInvalid, c.HaltOnFault)
	}

	return nil
}
