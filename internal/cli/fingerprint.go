package cli

import (
	"net/http"
	"time"

	"github.com/example/wpfinger/internal/config"
	"github.com/example/wpfinger/internal/events"
	"github.com/example/wpfinger/internal/fingerprint"
	"github.com/example/wpfinger/internal/transport"
	"github.com/spf13/cobra"
)

func newFingerprintCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Discover the WordPress core version of each target",
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
			fetcher := transport.NewHTTPFetcher(&http.Client{
				Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
			})

			for _, target := range cfg.Targets {
				observer := &events.ScanObserver{Emitter: emitter, Target: target}
				discoverer := fingerprint.NewDiscoverer(fetcher, nil, observer)

				version, ok := discoverer.Discover(cmd.Context(), target)
				if !ok {
					if err := emitter.Emit(events.Event{Type: events.TypeVersionFound, Target: target, Message: "No version signal found"}); err != nil {
						return err
					}
					continue
				}

				if err := emitter.Emit(events.Event{Type: events.TypeVersionFound, Target: target, Fields: map[string]interface{}{"version": version}}); err != nil {
					return err
				}
			}

			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)

	return cmd
}
