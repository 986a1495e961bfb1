package stats

import (
	"cmp"
	"slices"
	"strings"
)

type SortMode string

const (
	SortPercentDesc  SortMode = "percent_desc"
	SortPercentAsc   SortMode = "percent_asc"
	SortAvgTimeAsc   SortMode = "avg_time_asc"
	SortAvgTimeDesc  SortMode = "avg_time_desc"
	SortAttemptsAsc  SortMode = "attempts_asc"
	SortAttemptsDesc SortMode = "attempts_desc"
)

// SortModes lists the accepted modes, default first.
var SortModes = []SortMode{
	SortPercentDesc, SortPercentAsc,
	SortAvgTimeAsc, SortAvgTimeDesc,
	SortAttemptsAsc, SortAttemptsDesc,
}

// ParseSortMode maps unknown or empty names to percent_desc.
func ParseSortMode(name string) SortMode {
	mode := SortMode(strings.ToLower(strings.TrimSpace(name)))
	if slices.Contains(SortModes, mode) {
		return mode
	}
	return SortPercentDesc
}

// SortRows orders rows in place. Null keys go last in either direction and
// ties fall back to last name, first name, email and id.
func SortRows(rows []StudentRow, mode SortMode) {
	slices.SortFunc(rows, func(a, b StudentRow) int {
		if c := compareByMode(a, b, mode); c != 0 {
			return c
		}
		return compareIdentity(a, b)
	})
}

func compareByMode(a, b StudentRow, mode SortMode) int {
	switch mode {
	case SortPercentAsc:
		return compareNullable(a.PercentCorrect, b.PercentCorrect, false)
	case SortAvgTimeAsc:
		return compareNullable(a.AvgTime, b.AvgTime, false)
	case SortAvgTimeDesc:
		return compareNullable(a.AvgTime, b.AvgTime, true)
	case SortAttemptsAsc:
		if c := cmp.Compare(a.Attempts, b.Attempts); c != 0 {
			return c
		}
		return compareNullable(a.PercentCorrect, b.PercentCorrect, true)
	case SortAttemptsDesc:
		if c := cmp.Compare(b.Attempts, a.Attempts); c != 0 {
			return c
		}
		return compareNullable(a.PercentCorrect, b.PercentCorrect, true)
	default:
		return compareNullable(a.PercentCorrect, b.PercentCorrect, true)
	}
}

func compareNullable(a, b *float64, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case desc:
		return cmp.Compare(*b, *a)
	default:
		return cmp.Compare(*a, *b)
	}
}

// compareIdentity matches the roster order: empty names after filled ones.
func compareIdentity(a, b StudentRow) int {
	if c := compareName(a.LastName, b.LastName); c != 0 {
		return c
	}
	if c := compareName(a.FirstName, b.FirstName); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Email, b.Email); c != 0 {
		return c
	}
	return cmp.Compare(a.StudentID, b.StudentID)
}

func compareName(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	default:
		return cmp.Compare(a, b)
	}
}
