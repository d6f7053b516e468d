package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func init() {
	// SDL3 requires the main thread for some operations.
	runtime.LockOSThread()
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "stimulus",
		Short: "Sequence visual, audio and video stimuli for psychology experiments",
		Long: `stimulus plays a paradigm: an ordered sequence of text, image, audio and
video stimuli presented to a study participant, with responses collected
into a tabular dataset. It also fits psychometric functions (cumulative
normal, Weibull, logistic) to estimate perceptual thresholds from the
collected responses.`,
	}

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (info, debug, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(),
		newFitCmd(),
		newSetupCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stimulus version %s\n", version)
		},
	}
}
