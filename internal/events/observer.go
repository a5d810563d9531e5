package events

import (
	"github.com/example/wpfinger/internal/vuln"
)

// ScanObserver adapts an Emitter to the progress callbacks of the
// fingerprint and cascade packages, keeping the core free of any output.
// Emit failures are dropped: progress reporting must never abort a scan.
type ScanObserver struct {
	Emitter *Emitter
	Target  string
}

// ProbeAttempted implements fingerprint.Observer.
func (o *ScanObserver) ProbeAttempted(probe, url string, matched bool) {
	_ = o.Emitter.Emit(Event{
		Type:   TypeProbeAttempt,
		Target: o.Target,
		Fields: map[string]interface{}{"probe": probe, "url": url, "matched": matched},
	})
}

// CandidateTried implements cascade.Observer.
func (o *ScanObserver) CandidateTried(url string, status int) {
	_ = o.Emitter.Emit(Event{
		Type:   TypeCandidateTried,
		Target: o.Target,
		Fields: map[string]interface{}{"url": url, "status": status},
	})
}

// VerdictReached implements cascade.Observer.
func (o *ScanObserver) VerdictReached(kind, name string, verdict vuln.Verdict) {
	_ = o.Emitter.Emit(Event{
		Type:   TypeVerdict,
		Target: o.Target,
		Fields: map[string]interface{}{"kind": kind, "name": name, "verdict": verdict.String()},
	})
}
