package vuln

// Verdict is the terminal classification of a vulnerability check.
type Verdict int

const (
	// VerdictUnknown means no signal was available: the probe failed or the
	// resource was absent entirely.
	VerdictUnknown Verdict = iota
	// VerdictDetected means the resource exists and was parsed but carries
	// no explicit version string.
	VerdictDetected
	// VerdictAppears means the extracted version falls inside the
	// vulnerable range.
	VerdictAppears
	// VerdictSafe means the extracted version falls outside the vulnerable
	// range (patched or predates the flaw).
	VerdictSafe
)

// String returns the wire-friendly name of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictUnknown:
		return "unknown"
	case VerdictDetected:
		return "detected-unversioned"
	case VerdictAppears:
		return "vulnerability-appears"
	case VerdictSafe:
		return "safe"
	default:
		return "invalid"
	}
}
