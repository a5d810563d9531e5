package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/example/wpfinger/internal/cascade"
	"github.com/example/wpfinger/internal/config"
	"github.com/example/wpfinger/internal/events"
	"github.com/example/wpfinger/internal/fingerprint"
	"github.com/example/wpfinger/internal/transport"
	"github.com/remeh/sizedwaitgroup"
	"github.com/spf13/cobra"
)

// checkResult is one verdict row in the summary output.
type checkResult struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Verdict string `json:"verdict"`
}

// targetSummary aggregates everything learned about one target.
type targetSummary struct {
	Target  string        `json:"target"`
	Version string        `json:"version,omitempty"`
	Checks  []checkResult `json:"checks,omitempty"`
}

func newScanCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Fingerprint targets and evaluate configured plugin/theme checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := loader.Load(overrides)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			emitter := events.NewEmitter(cmd.OutOrStdout())
			if err := emitter.Emit(events.Event{Type: events.TypeScanStart, Message: "Starting scan", Fields: map[string]interface{}{"targets": len(cfg.Targets), "checks": len(cfg.Checks), "threads": cfg.Threads}}); err != nil {
				return err
			}

			fetcher := transport.NewHTTPFetcher(&http.Client{
				Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
			})

			var (
				mu        sync.Mutex
				summaries []targetSummary
				scanErrs  []error
			)

			// Targets are independent; each goroutine owns only its own
			// call-local state, so a bounded wait group is all the
			// coordination needed.
			swg := sizedwaitgroup.New(cfg.Threads)
			for _, target := range cfg.Targets {
				swg.Add()
				go func(target string) {
					defer swg.Done()
					summary, err := scanTarget(cmd.Context(), fetcher, cfg, target, emitter)

					mu.Lock()
					defer mu.Unlock()
					summaries = append(summaries, summary)
					if err != nil {
						scanErrs = append(scanErrs, fmt.Errorf("%s: %w", target, err))
					}
				}(target)
			}
			swg.Wait()

			if cfg.SummaryFile != "" {
				if err := writeSummary(cfg.SummaryFile, summaries); err != nil {
					return err
				}
				if err := emitter.Emit(events.Event{Type: events.TypeSummaryWritten, Fields: map[string]interface{}{"path": cfg.SummaryFile}}); err != nil {
					return err
				}
			}

			if err := emitter.Emit(events.Event{Type: events.TypeScanFinished, Message: "Scan complete", Fields: map[string]interface{}{"targets": len(summaries), "errors": len(scanErrs)}}); err != nil {
				return err
			}

			return errors.Join(scanErrs...)
		},
	}

	bindRuntimeFlags(cmd, flags)

	return cmd
}

// scanTarget runs the whole-app fingerprint followed by every configured
// plugin/theme check against a single target. Check errors come from
// malformed version bounds and abort the remaining checks for the target.
func scanTarget(ctx context.Context, fetcher transport.Fetcher, cfg config.RuntimeConfig, target string, emitter *events.Emitter) (targetSummary, error) {
	summary := targetSummary{Target: target}
	observer := &events.ScanObserver{Emitter: emitter, Target: target}

	discoverer := fingerprint.NewDiscoverer(fetcher, nil, observer)
	if version, ok := discoverer.Discover(ctx, target); ok {
		summary.Version = version
		_ = emitter.Emit(events.Event{Type: events.TypeVersionFound, Target: target, Fields: map[string]interface{}{"version": version}})
	}

	checker := cascade.NewChecker(fetcher, nil, cfg.ContentDir, observer)
	for _, check := range cfg.Checks {
		kind, err := cascade.ParseKind(check.Kind)
		if err != nil {
			return summary, err
		}

		verdict, err := checker.CheckVersion(ctx, target, kind, check.Name, check.Fixed, check.Introduced)
		if err != nil {
			return summary, err
		}

		summary.Checks = append(summary.Checks, checkResult{
			Kind:    check.Kind,
			Name:    check.Name,
			Verdict: verdict.String(),
		})
	}

	return summary, nil
}

func writeSummary(path string, summaries []targetSummary) error {
	payload := map[string]interface{}{
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
		"targets":     summaries,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	if err := ensureOutputDir(filepath.Dir(path)); err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}
