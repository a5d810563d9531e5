package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/example/wpfinger/internal/events"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var inputPath string
	var summaryPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate verdict counts from a scan's NDJSON event stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return errors.New("--input is required")
			}

			stats, err := aggregateEvents(inputPath)
			if err != nil {
				return err
			}

			emitter := events.NewEmitter(cmd.OutOrStdout())
			if err := emitter.Emit(events.Event{Type: "report", Message: "Report generated", Fields: stats}); err != nil {
				return err
			}

			if summaryPath != "" {
				if err := writeReportSummary(summaryPath, stats); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s\n", summaryPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to an NDJSON event stream from a previous scan")
	cmd.Flags().StringVar(&summaryPath, "summary-file", "", "Optional path to store summary JSON")
	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}

	return cmd
}

// aggregateEvents tallies verdicts and version discoveries from an NDJSON stream.
func aggregateEvents(path string) (map[string]interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	verdicts := map[string]int{}
	versionsFound := 0
	lines := 0

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		lines++

		var evt events.Event
		if err := json.Unmarshal(line, &evt); err != nil {
			return nil, fmt.Errorf("line %d: %w", lines, err)
		}

		switch evt.Type {
		case events.TypeVerdict:
			if verdict, ok := evt.Fields["verdict"].(string); ok {
				verdicts[verdict]++
			}
		case events.TypeVersionFound:
			if _, ok := evt.Fields["version"]; ok {
				versionsFound++
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"input":         path,
		"events":        lines,
		"verdicts":      verdicts,
		"versionsFound": versionsFound,
		"generatedAt":   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func writeReportSummary(path string, stats map[string]interface{}) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
