package cli

import (
	"fmt"

	"github.com/example/wpfinger/internal/config"
	"github.com/spf13/cobra"
)

// runtimeFlagSet tracks shared scan/fingerprint flags before they are converted into config overrides.
type runtimeFlagSet struct {
	targets     string
	targetsFile string
	timeout     int
	threads     int
	contentDir  string
	checksFile  string
	summaryFile string
}

func bindRuntimeFlags(cmd *cobra.Command, flags *runtimeFlagSet) {
	cmd.Flags().StringVar(&flags.targets, "targets", "", "Comma-separated list of targets (overrides config)")
	cmd.Flags().StringVar(&flags.targetsFile, "targets-file", "", "Path to a file with one target per line")
	cmd.Flags().IntVar(&flags.timeout, "timeout", 0, "Per-request timeout in seconds")
	cmd.Flags().IntVar(&flags.threads, "threads", 0, fmt.Sprintf("Number of targets scanned concurrently (1-%d)", config.MaxThreads))
	cmd.Flags().StringVar(&flags.contentDir, "content-dir", "", "WordPress content directory (default wp-content)")
	cmd.Flags().StringVar(&flags.checksFile, "checks-file", "", "YAML file listing plugin/theme checks")
	cmd.Flags().StringVar(&flags.summaryFile, "summary-file", "", "Optional summary JSON output path")
}

func (f runtimeFlagSet) toOverrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{}
	if cmd.Flags().Changed("targets") {
		ov.Targets = config.ParseTargetsList(f.targets)
	}

	if cmd.Flags().Changed("targets-file") {
		ov.TargetsFile = f.targetsFile
	}

	if cmd.Flags().Changed("timeout") {
		ov.Timeout = f.timeout
		ov.TimeoutSet = true
	}

	if cmd.Flags().Changed("threads") {
		ov.Threads = f.threads
		ov.ThreadsSet = true
	}

	if cmd.Flags().Changed("content-dir") {
		ov.ContentDir = f.contentDir
	}

	if cmd.Flags().Changed("checks-file") {
		ov.ChecksFile = f.checksFile
	}

	if cmd.Flags().Changed("summary-file") {
		ov.SummaryFile = f.summaryFile
	}

	return ov
}
