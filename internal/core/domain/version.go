package domain

import (
	"strconv"
	"strings"
)

// CompareVersions imposes a total order on version strings. Versions are
// split on "." and compared segment by segment: two all-digit segments
// compare numerically, anything else compares lexically. When a common
// prefix is equal, the version with more segments is the greater one.
//
// It returns -1 if a < b, 0 if a == b, and 1 if a > b.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}

	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

func compareSegment(a, b string) int {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
