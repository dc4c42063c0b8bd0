package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sarchlab/ps2sim/config"
	"github.com/sarchlab/ps2sim/datarecording"
	"github.com/sarchlab/ps2sim/monitoring"
	"github.com/sarchlab/ps2sim/sched"
	"github.com/sarchlab/ps2sim/system"
	"github.com/sarchlab/ps2sim/tracing"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type runOptions struct {
	envFile     string
	frames      int
	monitor     bool
	openBrowser bool
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Boot the BIOS and run a number of frames.",
		Long: "`run --bios scph10000.bin --frames 600` boots the BIOS and " +
			"emulates ten seconds of console time. Settings not given as " +
			"flags are read from PS2SIM_* environment variables and from " +
			"the --env file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts.envFile)
			if err != nil {
				return err
			}

			return run(cfg, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.envFile, "env", ".env", "file with PS2SIM_* settings")
	f.IntVar(&opts.frames, "frames", 60, "frames to run, negative runs forever")
	f.BoolVar(&opts.monitor, "monitor", false, "start the monitoring server")
	f.BoolVar(&opts.openBrowser, "open-browser", false,
		"open the monitor in a browser")
	f.String("bios", "", "BIOS image")
	f.String("game", "", "ELF executable to fast boot")
	f.Uint64("quantum", config.DefaultQuantum,
		"EE cycles per scheduling quantum, a multiple of 8")
	f.String("log-level", "info", "panic, fatal, error, warn, info, debug or trace")
	f.String("trace-db", "", "record a trace into this SQLite database")
	f.Int("monitor-port", 0, "monitor port, 0 picks a free one")
	f.String("halt-on-fault", string(config.HaltCPU),
		"halt the faulting cpu or the whole session")

	return cmd
}

// loadConfig reads the environment and lets explicitly given flags win.
func loadConfig(flags *pflag.FlagSet, envFile string) (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}

	var ferr error
	flags.Visit(func(f *pflag.Flag) {
		if ferr != nil {
			return
		}

		ferr = applyFlag(&cfg, flags, f.Name)
	})

	if ferr != nil {
		return cfg, ferr
	}

	return cfg, cfg.Validate()
}

func applyFlag(cfg *config.Config, flags *pflag.FlagSet, name string) error {
	var err error

	switch name {
	case "bios":
		cfg.BIOSPath, err = flags.GetString(name)
	case "game":
		cfg.GamePath, err = flags.GetString(name)
	case "quantum":
		cfg.Quantum, err = flags.GetUint64(name)
	case "trace-db":
		cfg.TraceDB, err = flags.GetString(name)
	case "monitor-port":
		cfg.MonitorPort, err = flags.GetInt(name)
	case "halt-on-fault":
		var v string
		v, err = flags.GetString(name)
		cfg.HaltOnFault = config.FaultPolicy(v)
	case "log-level":
		var v string
		if v, err = flags.GetString(name); err == nil {
			cfg.LogLevel, err = logrus.ParseLevel(v)
		}
	}

	if err != nil {
		return fmt.Errorf("%w: --%s: %w", config.ErrInvalid, name, err)
	}

	return nil
}

func run(cfg config.Config, opts runOptions, out io.Writer) error {
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	log := logrus.NewEntry(logger)

	sys, err := system.New(cfg, system.WithLogger(log))
	if err != nil {
		return err
	}

	counter := tracing.NewCountTracer()
	tracing.CollectSystemTrace(sys, counter)

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		tracing.CollectSystemTrace(sys, tracing.NewLogTracer(
			log.WithField("component", "trace"), logrus.DebugLevel,
			tracing.KindException, tracing.KindSyscall,
			tracing.KindTransfer, tracing.KindFault))
	}

	if cfg.TraceDB != "" {
		done, err := startRecording(sys, cfg, log)
		if err != nil {
			return err
		}
		defer done()
	}

	runner := system.NewRunner(sys)

	if opts.monitor {
		if err := startMonitor(sys, runner, cfg, opts, log); err != nil {
			return err
		}
	}

	runErr := runner.Run(opts.frames)

	printSummary(out, sys, counter)

	return runErr
}

func startRecording(
	sys *system.System,
	cfg config.Config,
	log *logrus.Entry,
) (func(), error) {
	rec, err := datarecording.New(cfg.TraceDB)
	if err != nil {
		return nil, err
	}

	session, err := datarecording.NewSessionRecorder(rec)
	if err != nil {
		return nil, err
	}

	session.Start()
	session.Set("BIOS", filepath.Base(cfg.BIOSPath))
	session.Set("Game", filepath.Base(cfg.GamePath))
	session.Set("Quantum", fmt.Sprint(cfg.Quantum))

	tracer, err := tracing.NewDBTracer(rec, log.WithField("component", "trace-db"))
	if err != nil {
		return nil, err
	}

	tracing.CollectSystemTrace(sys, tracer)

	return func() {
		tracer.Terminate()

		if err := session.End(); err != nil {
			log.WithError(err).Error("recording session info")
		}

		if err := rec.Close(); err != nil {
			log.WithError(err).Error("closing trace database")
		}
	}, nil
}

func startMonitor(
	sys *system.System,
	runner *system.Runner,
	cfg config.Config,
	opts runOptions,
	log *logrus.Entry,
) error {
	m := monitoring.NewMonitor(runner).
		WithPortNumber(cfg.MonitorPort).
		WithLogger(log)
	m.RegisterSystem(sys)

	if cfg.TraceDB != "" {
		r, err := datarecording.OpenReader(cfg.TraceDB)
		if err != nil {
			return err
		}

		m.WithTraceReader(r)
	}

	if opts.frames > 0 {
		m.TrackFrames(sys, uint64(opts.frames))
	}

	url, err := m.StartServer()
	if err != nil {
		return err
	}

	if opts.openBrowser {
		if err := monitoring.OpenInBrowser(url); err != nil {
			fmt.Fprintf(os.Stderr, "cannot open browser: %v\n", err)
		}
	}

	return nil
}

func printSummary(w io.Writer, sys *system.System, c *tracing.CountTracer) {
	fmt.Fprintf(w, "frames:      %d\n", sys.Frame())
	fmt.Fprintf(w, "cycles:      %d (%.3fs)\n",
		sys.Cycles(), sched.EEClock.Seconds(sys.Cycles()))
	fmt.Fprintf(w, "ee retired:  %d (pc 0x%08x)\n", sys.EE().Retired(), sys.EE().PC())
	fmt.Fprintf(w, "iop retired: %d (pc 0x%08x)\n", sys.IOP().Retired(), sys.IOP().PC())

	for _, k := range c.Kinds() {
		fmt.Fprintf(w, "%-12s %d\n", k+":", c.Count(k))
	}

	for _, unit := range []string{sys.EE().Name(), sys.IOP().Name()} {
		if sys.Halted(unit) {
			fmt.Fprintf(w, "%s halted: %v\n", unit, sys.Fault(unit))
		}
	}
}
