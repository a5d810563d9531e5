package fingerprint

import (
	"regexp"

	"github.com/example/wpfinger/internal/transport"
)

// versionToken is a permissive version capture: anything with a dot that
// stops at quotes or line breaks, so 4-segment plugin-style versions and
// beta suffixes survive intact.
const versionToken = `([^\r\n"']+\.[^\r\n"']+)`

var (
	generatorMetaRegex = regexp.MustCompile(`(?i)<meta name="generator" content="WordPress ` + versionToken + `" />`)
	readmeHTMLRegex    = regexp.MustCompile(`(?i)<br />\sversion ` + versionToken)
	rssGeneratorRegex  = regexp.MustCompile(`(?i)<generator>https?://wordpress\.org/\?v=` + versionToken + `</generator>`)
	rdfGeneratorRegex  = regexp.MustCompile(`(?i)<admin:generatorAgent rdf:resource="https?://wordpress\.org/\?v=` + versionToken + `" />`)
	atomGeneratorRegex = regexp.MustCompile(`(?i)<generator uri="https?://wordpress\.org/" version="` + versionToken + `">WordPress</generator>`)
	wpGeneratorRegex   = regexp.MustCompile(`(?i)generator="wordpress/` + versionToken + `"`)
)

func locator(segments ...string) func(string) (string, error) {
	return func(base string) (string, error) {
		return transport.BuildURL(base, segments...)
	}
}

// DefaultProbes returns the built-in probe cascade in priority order. The
// generator meta tag leads as the cheapest and most common signal; the
// remaining sources only matter when a site suppresses it.
func DefaultProbes() []Probe {
	return []Probe{
		{Name: "meta-generator", Locator: locator(), Pattern: generatorMetaRegex},
		{Name: "readme", Locator: locator("readme.html"), Pattern: readmeHTMLRegex},
		{Name: "rss", Locator: locator("feed/"), Pattern: rssGeneratorRegex},
		{Name: "rdf", Locator: locator("feed/rdf/"), Pattern: rdfGeneratorRegex},
		{Name: "atom", Locator: locator("feed/atom/"), Pattern: atomGeneratorRegex},
		{Name: "sitemap", Locator: locator("sitemap.xml"), Pattern: wpGeneratorRegex},
		{Name: "opml", Locator: locator("wp-links-opml.php"), Pattern: wpGeneratorRegex},
	}
}
