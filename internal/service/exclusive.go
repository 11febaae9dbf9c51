package service

import "strings"

const exclusiveSuffix = "_exclusive"

// Exclusive returns the synthetic exclusive variant of a logical service.
// Exclusive variants are derived at query time and never persisted.
func Exclusive(base ID) ID {
	if IsExclusive(base) {
		return base
	}
	return base + exclusiveSuffix
}

// IsExclusive reports whether id is a synthetic exclusive variant.
func IsExclusive(id ID) bool {
	return strings.HasSuffix(string(id), exclusiveSuffix)
}

// Base strips the exclusive suffix, returning the underlying service.
func Base(id ID) ID {
	return ID(strings.TrimSuffix(string(id), exclusiveSuffix))
}

// Sole returns the single distinct base service present in ids, if the
// whole set maps to exactly one. Events whose inventory collapses to a
// sole service are relabeled with its exclusive variant during queries.
func Sole(ids []ID) (ID, bool) {
	if len(ids) == 0 {
		return "", false
	}
	first := Base(ids[0])
	for _, id := range ids[1:] {
		if Base(id) != first {
			return "", false
		}
	}
	return first, true
}
