// Package version provides ordering for dotted version strings.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Comparator orders two version strings.
//
// Compare returns -1 when a < b, 0 when equal, and 1 when a > b. Inputs must
// be dot-separated numeric or alphanumeric segments; anything the underlying
// grammar cannot parse is reported as an error rather than given an
// arbitrary position in the order.
type Comparator interface {
	Compare(a, b string) (int, error)
}

// SemverComparator orders versions with semver coercion, so partial
// versions like "4.9" compare as "4.9.0".
type SemverComparator struct{}

// Compare implements Comparator.
func (SemverComparator) Compare(a, b string) (int, error) {
	va, err := semver.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("unparseable version %q: %w", a, err)
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("unparseable version %q: %w", b, err)
	}
	return va.Compare(vb), nil
}
