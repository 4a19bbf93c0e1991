// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package org

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugStripPattern    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapsePattern = regexp.MustCompile(`\s+`)
)

// Slugify derives a URL-safe base slug from an organization name:
// lower-cased, characters outside [word, whitespace, hyphen] stripped,
// whitespace runs collapsed to single hyphens, leading/trailing hyphens
// trimmed.
//
//	Slugify("My Startup")  == "my-startup"
//	Slugify("Google Inc!") == "google-inc"
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugCollapsePattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// ResolveSlug returns the first unused slug among base, base-2, base-3, and
// so on. The taken predicate must be evaluated inside the same transaction
// as the organization insert; the slug unique constraint closes the residual
// race between two concurrent creations computing the same slug.
func ResolveSlug(base string, taken func(string) (bool, error)) (string, error) {
	inUse, err := taken(base)
	if err != nil {
		return "", err
	}
	if !inUse {
		return base, nil
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		inUse, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !inUse {
			return candidate, nil
		}
	}
}
