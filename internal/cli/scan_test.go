package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/wpfinger/internal/config"
	"github.com/example/wpfinger/internal/events"
)

func newWordPressTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<html><head><meta name="generator" content="WordPress 6.5.1" /></head></html>`))
	})
	mux.HandleFunc("/wp-content/plugins/contact-form/readme.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("=== Contact Form ===\nStable tag: 2.6.5\n"))
	})
	mux.HandleFunc("/wp-content/themes/twenty/readme.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("a readme without any marker\n"))
	})
	mux.HandleFunc("/wp-content/themes/twenty/style.css", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("/*\nTheme Name: Twenty\nVersion: 1.4\n*/\n"))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func decodeEvents(t *testing.T, buf *bytes.Buffer) []events.Event {
	t.Helper()

	var decoded []events.Event
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var evt events.Event
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", scanner.Text(), err)
		}
		decoded = append(decoded, evt)
	}
	return decoded
}

func eventsOfType(evts []events.Event, eventType string) []events.Event {
	var out []events.Event
	for _, evt := range evts {
		if evt.Type == eventType {
			out = append(out, evt)
		}
	}
	return out
}

func TestScanCommandEndToEnd(t *testing.T) {
	ts := newWordPressTestServer(t)
	dir := t.TempDir()

	checksPath := filepath.Join(dir, "checks.yml")
	checksYAML := `
- kind: plugin
  name: contact-form
  fixed: 2.6.6
- kind: theme
  name: twenty
  fixed: "1.5"
`
	if err := os.WriteFile(checksPath, []byte(checksYAML), 0o644); err != nil {
		t.Fatalf("write checks file: %v", err)
	}

	summaryPath := filepath.Join(dir, "summary.json")
	loader := &config.Loader{ConfigPath: filepath.Join(dir, "missing.yml")}

	buf := &bytes.Buffer{}
	cmd := newScanCmd(loader)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"--targets", ts.URL,
		"--checks-file", checksPath,
		"--summary-file", summaryPath,
		"--threads", "1",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("scan failed: %v\noutput:\n%s", err, buf.String())
	}

	evts := decodeEvents(t, buf)

	if len(eventsOfType(evts, events.TypeScanStart)) != 1 {
		t.Fatalf("expected one scan-start event, output:\n%v", evts)
	}

	found := eventsOfType(evts, events.TypeVersionFound)
	if len(found) != 1 || found[0].Fields["version"] != "6.5.1" {
		t.Fatalf("version-found events = %v", found)
	}

	verdicts := eventsOfType(evts, events.TypeVerdict)
	if len(verdicts) != 2 {
		t.Fatalf("expected 2 verdict events, got %v", verdicts)
	}
	for _, evt := range verdicts {
		if evt.Fields["verdict"] != "vulnerability-appears" {
			t.Fatalf("verdict = %v", evt.Fields)
		}
	}

	if len(eventsOfType(evts, events.TypeScanFinished)) != 1 {
		t.Fatal("missing scan-finished event")
	}

	data, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}

	var summary struct {
		Targets []targetSummary `json:"targets"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("invalid summary JSON: %v", err)
	}
	if len(summary.Targets) != 1 {
		t.Fatalf("summary targets = %v", summary.Targets)
	}
	if summary.Targets[0].Version != "6.5.1" {
		t.Fatalf("summary version = %q", summary.Targets[0].Version)
	}
	if len(summary.Targets[0].Checks) != 2 {
		t.Fatalf("summary checks = %v", summary.Targets[0].Checks)
	}
}

func TestScanCommandRequiresTargets(t *testing.T) {
	dir := t.TempDir()
	loader := &config.Loader{ConfigPath: filepath.Join(dir, "missing.yml")}

	cmd := newScanCmd(loader)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected validation error without targets")
	}
}

func TestScanCommandMalformedBoundFails(t *testing.T) {
	ts := newWordPressTestServer(t)
	dir := t.TempDir()

	checksPath := filepath.Join(dir, "checks.yml")
	checksYAML := `
- kind: plugin
  name: contact-form
  fixed: "!!not-a-version!!"
`
	if err := os.WriteFile(checksPath, []byte(checksYAML), 0o644); err != nil {
		t.Fatalf("write checks file: %v", err)
	}

	loader := &config.Loader{ConfigPath: filepath.Join(dir, "missing.yml")}
	cmd := newScanCmd(loader)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--targets", ts.URL, "--checks-file", checksPath})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unparseable fixed bound")
	}
}
