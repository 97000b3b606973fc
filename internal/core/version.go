package core

import (
	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"
)

// releaseOrder compares release identifiers. Dotted releases parse as
// PEP 440 versions; identifiers PEP 440 rejects, such as the weekly
// snapshot form 21w37a, fall back to Debian version ordering.
type releaseOrder struct {
	deb map[string]debversion.Version
	pep map[string]pep440.Version
}

func newReleaseOrder() *releaseOrder {
	return &releaseOrder{
		deb: map[string]debversion.Version{},
		pep: map[string]pep440.Version{},
	}
}

// debVersion returns a parsed Debian version, caching the result.
func (c *releaseOrder) debVersion(value string) (debversion.Version, error) {
	if parsed, ok := c.deb[value]; ok {
		return parsed, nil
	}
	parsed, err := debversion.NewVersion(value)
	if err != nil {
		return debversion.Version{}, err
	}
	c.deb[value] = parsed
	return parsed, nil
}

// pepVersion returns a parsed PEP 440 version, caching the result.
func (c *releaseOrder) pepVersion(value string) (pep440.Version, error) {
	if parsed, ok := c.pep[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.Parse(value)
	if err != nil {
		return pep440.Version{}, err
	}
	c.pep[value] = parsed
	return parsed, nil
}

// compare returns -1, 0, or 1 comparing two release identifiers. ok is
// false when neither scheme parses both values.
func (c *releaseOrder) compare(a string, b string) (int, bool) {
	if v1, err := c.pepVersion(a); err == nil {
		if v2, err := c.pepVersion(b); err == nil {
			return v1.Compare(v2), true
		}
	}
	v1, err := c.debVersion(a)
	if err != nil {
		return 0, false
	}
	v2, err := c.debVersion(b)
	if err != nil {
		return 0, false
	}
	return v1.Compare(v2), true
}
