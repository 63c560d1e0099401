// Package revalidation computes which cached paths a data mutation makes
// stale and fans the invalidation calls out to the cache layer.
package revalidation

import (
	"sort"
	"strings"
)

// PathsFor computes the invalidation set for a mutation on the given
// entity kind. The result is deterministic for identical inputs: always
// the collection listing path and the root path, plus the single-entity
// detail path when entityID is supplied. The set is duplicate-free and
// sorted so callers can compare results directly.
//
// Root is included unconditionally even when it does not display the
// mutated kind; narrowing that would guess at page composition.
func PathsFor(entityKind, entityID string) []string {
	kind := strings.Trim(entityKind, "/")

	set := map[string]struct{}{
		"/": {},
	}
	if kind != "" {
		set["/"+kind] = struct{}{}
		if entityID != "" {
			set["/"+kind+"/"+entityID] = struct{}{}
		}
	}

	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
