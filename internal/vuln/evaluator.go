// Package vuln classifies extracted version strings against vulnerable
// version ranges.
package vuln

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/example/wpfinger/internal/version"
)

// SourceKind selects the extraction pattern applied to a document body.
type SourceKind int

const (
	// SourceReadme is a plugin/theme readme.txt style document.
	SourceReadme SourceKind = iota
	// SourceStylesheet is a theme style.css header.
	SourceStylesheet
)

var (
	readmeVersionRegex = regexp.MustCompile(`(?i)(?:stable tag|version):\s*([0-9a-z.\-]+)`)
	styleVersionRegex  = regexp.MustCompile(`(?i)version:\s*([0-9a-z.\-]+)`)
)

// Evaluator turns a raw document body plus optional range bounds into a
// verdict. It never touches the network.
type Evaluator struct {
	cmp version.Comparator
}

// NewEvaluator builds an evaluator around the given comparator, defaulting
// to semver ordering when nil.
func NewEvaluator(cmp version.Comparator) *Evaluator {
	if cmp == nil {
		cmp = version.SemverComparator{}
	}
	return &Evaluator{cmp: cmp}
}

// Evaluate extracts a version token from body and classifies it.
//
// A body with no extractable version yields VerdictDetected. With a version,
// fixed is the bound at or above which the target is patched and introduced
// the bound below which the flaw did not yet exist; either may be empty for
// "unbounded". A bound or token the comparator cannot order is returned as
// an error so that misconfigured bounds fail loudly instead of silently
// widening the range.
func (e *Evaluator) Evaluate(body string, source SourceKind, fixed, introduced string) (Verdict, error) {
	extracted, ok := ExtractVersion(body, source)
	if !ok {
		return VerdictDetected, nil
	}
	return e.classify(extracted, fixed, introduced)
}

// ExtractVersion pulls the first version token out of body for the given
// source kind. The token is returned verbatim.
func ExtractVersion(body string, source SourceKind) (string, bool) {
	var pattern *regexp.Regexp
	switch source {
	case SourceReadme:
		pattern = readmeVersionRegex
	case SourceStylesheet:
		pattern = styleVersionRegex
	default:
		panic(fmt.Sprintf("vuln: invalid source kind %d", source))
	}

	for _, match := range pattern.FindAllStringSubmatch(body, -1) {
		token := match[1]
		// Readmes under active development declare "Stable tag: trunk",
		// which carries no version information.
		if strings.EqualFold(token, "trunk") {
			continue
		}
		if token != "" {
			return token, true
		}
	}
	return "", false
}

func (e *Evaluator) classify(extracted, fixed, introduced string) (Verdict, error) {
	if fixed == "" {
		return e.classifyUnfixed(extracted, introduced)
	}

	cmpFixed, err := e.cmp.Compare(extracted, fixed)
	if err != nil {
		return VerdictUnknown, err
	}
	// At or above the fixed version means patched, including the exact
	// boundary.
	if cmpFixed >= 0 {
		return VerdictSafe, nil
	}
	return e.classifyUnfixed(extracted, introduced)
}

// classifyUnfixed narrows a version already inside the unpatched pool by the
// optional introduced bound. The introduced boundary itself is vulnerable.
func (e *Evaluator) classifyUnfixed(extracted, introduced string) (Verdict, error) {
	if introduced == "" {
		return VerdictAppears, nil
	}
	cmpIntroduced, err := e.cmp.Compare(extracted, introduced)
	if err != nil {
		return VerdictUnknown, err
	}
	if cmpIntroduced >= 0 {
		return VerdictAppears, nil
	}
	return VerdictSafe, nil
}
