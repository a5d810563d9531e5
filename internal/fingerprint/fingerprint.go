// Package fingerprint discovers a WordPress core version from the signals a
// site leaks even when the version is not directly exposed.
package fingerprint

import (
	"context"
	"net/http"
	"regexp"

	"github.com/example/wpfinger/internal/transport"
)

// Probe pairs a URL locator with a single-capture extraction pattern. Probes
// are tried in slice order; order encodes priority.
type Probe struct {
	Name    string
	Locator func(base string) (string, error)
	Pattern *regexp.Regexp
}

// Observer receives progress callbacks from a discovery run.
type Observer interface {
	ProbeAttempted(probe, url string, matched bool)
}

// Discoverer runs an ordered probe cascade against a target.
type Discoverer struct {
	fetcher  transport.Fetcher
	probes   []Probe
	observer Observer
}

// NewDiscoverer builds a discoverer over the given fetcher. A nil probes
// slice selects DefaultProbes; observer may be nil.
func NewDiscoverer(fetcher transport.Fetcher, probes []Probe, observer Observer) *Discoverer {
	if probes == nil {
		probes = DefaultProbes()
	}
	return &Discoverer{fetcher: fetcher, probes: probes, observer: observer}
}

// Discover returns the version extracted by the first matching probe, or
// false when every probe fails. Each probe is attempted exactly once;
// transport failures and non-200 responses just advance the cascade. The
// extracted capture is returned verbatim.
func (d *Discoverer) Discover(ctx context.Context, base string) (string, bool) {
	for _, probe := range d.probes {
		url, err := probe.Locator(base)
		if err != nil {
			continue
		}

		resp, err := d.fetcher.Fetch(ctx, url)
		if err != nil || resp.StatusCode != http.StatusOK {
			d.notify(probe.Name, url, false)
			continue
		}

		match := probe.Pattern.FindStringSubmatch(resp.Body)
		if len(match) < 2 || match[1] == "" {
			d.notify(probe.Name, url, false)
			continue
		}

		d.notify(probe.Name, url, true)
		return match[1], true
	}
	return "", false
}

func (d *Discoverer) notify(probe, url string, matched bool) {
	if d.observer != nil {
		d.observer.ProbeAttempted(probe, url, matched)
	}
}
