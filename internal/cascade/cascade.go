// Package cascade resolves plugin and theme vulnerability checks through the
// readme/stylesheet fallback chain.
package cascade

import (
	"context"
	"fmt"
	"net/http"

	"github.com/example/wpfinger/internal/transport"
	"github.com/example/wpfinger/internal/vuln"
)

// TargetKind identifies what kind of WordPress extension is being checked.
type TargetKind int

const (
	// KindPlugin lives under wp-content/plugins and has no stylesheet
	// fallback.
	KindPlugin TargetKind = iota
	// KindTheme lives under wp-content/themes and falls back to its
	// style.css header when the readme yields nothing.
	KindTheme
)

// String returns the content-directory segment for the kind.
func (k TargetKind) String() string {
	switch k {
	case KindPlugin:
		return "plugins"
	case KindTheme:
		return "themes"
	default:
		panic(fmt.Sprintf("cascade: invalid target kind %d", k))
	}
}

// ParseKind maps the config-level kind strings onto the closed enum.
func ParseKind(s string) (TargetKind, error) {
	switch s {
	case "plugin":
		return KindPlugin, nil
	case "theme":
		return KindTheme, nil
	default:
		return 0, fmt.Errorf("unknown target kind %q", s)
	}
}

// Case variants cover targets hosted on case-sensitive file systems.
var readmeCandidates = []string{"readme.txt", "Readme.txt", "README.txt"}

// Observer receives progress callbacks from a check.
type Observer interface {
	CandidateTried(url string, status int)
	VerdictReached(kind, name string, verdict vuln.Verdict)
}

// Checker runs readme/stylesheet version checks against one base URL.
type Checker struct {
	fetcher    transport.Fetcher
	evaluator  *vuln.Evaluator
	contentDir string
	observer   Observer
}

// NewChecker builds a checker. contentDir defaults to "wp-content";
// evaluator defaults to semver ordering; observer may be nil.
func NewChecker(fetcher transport.Fetcher, evaluator *vuln.Evaluator, contentDir string, observer Observer) *Checker {
	if evaluator == nil {
		evaluator = vuln.NewEvaluator(nil)
	}
	if contentDir == "" {
		contentDir = "wp-content"
	}
	return &Checker{fetcher: fetcher, evaluator: evaluator, contentDir: contentDir, observer: observer}
}

// CheckVersion resolves the verdict for one plugin or theme. fixed and
// introduced are optional range bounds; empty means unbounded on that side.
//
// Readme candidates are tried in order until one answers 200. A plugin with
// no readme is VerdictUnknown; a theme falls back to its stylesheet both
// when the readme is missing and when it exists but carries no version.
func (c *Checker) CheckVersion(ctx context.Context, base string, kind TargetKind, name, fixed, introduced string) (vuln.Verdict, error) {
	body, found, err := c.fetchReadme(ctx, base, kind, name)
	if err != nil {
		return vuln.VerdictUnknown, err
	}

	if !found {
		if kind == KindTheme {
			return c.checkStyle(ctx, base, name, fixed, introduced)
		}
		return c.reach(kind, name, vuln.VerdictUnknown), nil
	}

	verdict, err := c.evaluator.Evaluate(body, vuln.SourceReadme, fixed, introduced)
	if err != nil {
		return vuln.VerdictUnknown, err
	}

	if verdict == vuln.VerdictDetected && kind == KindTheme {
		return c.checkStyle(ctx, base, name, fixed, introduced)
	}
	return c.reach(kind, name, verdict), nil
}

// fetchReadme walks the candidate filenames and returns the first 200 body.
func (c *Checker) fetchReadme(ctx context.Context, base string, kind TargetKind, name string) (string, bool, error) {
	for _, candidate := range readmeCandidates {
		url, err := transport.BuildURL(base, c.contentDir, kind.String(), name, candidate)
		if err != nil {
			return "", false, err
		}

		resp, err := c.fetcher.Fetch(ctx, url)
		if err != nil {
			c.tried(url, 0)
			continue
		}
		c.tried(url, resp.StatusCode)
		if resp.StatusCode == http.StatusOK {
			return resp.Body, true, nil
		}
	}
	return "", false, nil
}

// checkStyle is the terminal stylesheet check; there is no further fallback.
func (c *Checker) checkStyle(ctx context.Context, base, name, fixed, introduced string) (vuln.Verdict, error) {
	url, err := transport.BuildURL(base, c.contentDir, KindTheme.String(), name, "style.css")
	if err != nil {
		return vuln.VerdictUnknown, err
	}

	resp, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		c.tried(url, 0)
		return c.reach(KindTheme, name, vuln.VerdictUnknown), nil
	}
	c.tried(url, resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		return c.reach(KindTheme, name, vuln.VerdictUnknown), nil
	}

	verdict, err := c.evaluator.Evaluate(resp.Body, vuln.SourceStylesheet, fixed, introduced)
	if err != nil {
		return vuln.VerdictUnknown, err
	}
	return c.reach(KindTheme, name, verdict), nil
}

func (c *Checker) tried(url string, status int) {
	if c.observer != nil {
		c.observer.CandidateTried(url, status)
	}
}

func (c *Checker) reach(kind TargetKind, name string, verdict vuln.Verdict) vuln.Verdict {
	if c.observer != nil {
		c.observer.VerdictReached(kind.String(), name, verdict)
	}
	return verdict
}
