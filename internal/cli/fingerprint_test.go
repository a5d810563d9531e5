package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/example/wpfinger/internal/config"
	"github.com/example/wpfinger/internal/events"
)

func TestFingerprintCommandFindsVersion(t *testing.T) {
	ts := newWordPressTestServer(t)
	loader := &config.Loader{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")}

	buf := &bytes.Buffer{}
	cmd := newFingerprintCmd(loader)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--targets", ts.URL})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("fingerprint failed: %v\noutput:\n%s", err, buf.String())
	}

	evts := decodeEvents(t, buf)
	found := eventsOfType(evts, events.TypeVersionFound)
	if len(found) != 1 || found[0].Fields["version"] != "6.5.1" {
		t.Fatalf("version-found events = %v", found)
	}
}

func TestFingerprintCommandNoSignal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	loader := &config.Loader{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")}

	buf := &bytes.Buffer{}
	cmd := newFingerprintCmd(loader)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--targets", ts.URL})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("fingerprint failed: %v", err)
	}

	evts := decodeEvents(t, buf)
	found := eventsOfType(evts, events.TypeVersionFound)
	if len(found) != 1 {
		t.Fatalf("expected one version-found event, got %v", found)
	}
	if found[0].Message != "No version signal found" {
		t.Fatalf("message = %q", found[0].Message)
	}

	// Every probe should have been attempted before giving up.
	attempts := eventsOfType(evts, events.TypeProbeAttempt)
	if len(attempts) != 7 {
		t.Fatalf("expected 7 probe attempts, got %d", len(attempts))
	}
}
