package main

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ps2sim",
		Short: "ps2sim emulates the PS2 Emotion Engine and I/O processor.",
		Long: `ps2sim emulates the PS2 Emotion Engine and I/O processor ` +
			`cores, their DMA controllers, interrupt controllers, timers ` +
			`and the SIF link between them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(), newTraceCmd(), newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of ps2sim.",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("ps2sim %s\n", version)
		},
	}
}

// Execute runs the root command. Errors exit through atexit so that
// recorders registered for flushing get to write their data.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		atexit.Fatalf("Error: %v", err)
	}

	atexit.Exit(0)
}
