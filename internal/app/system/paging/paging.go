// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in paged lists.
// Keep this as an int because most call sites add/subtract and then
// cast to int64 for Mongo Find().SetLimit().
const PageSize = 50

// LimitPlusOne returns PageSize+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// ParseStart extracts the human-friendly "start" query parameter (1-based index).
// Returns 1 if not present or invalid.
func ParseStart(r *http.Request) int {
	s := query.Get(r, "start")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Result holds the output of TrimPage.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage trims a fetched slice for look-ahead pagination.
// Call this after fetching PageSize+1 rows starting at the 1-based start
// index. It modifies the slice in place and returns pagination indicators.
func TrimPage[T any](rows *[]T, start int) Result {
	res := Result{HasPrev: start > 1}
	if len(*rows) > PageSize {
		*rows = (*rows)[:PageSize]
		res.HasNext = true
	}
	return res
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start     int // 1-based start index (0 if no results)
	End       int // 1-based end index (0 if no results)
	PrevStart int // start value for previous page link
	NextStart int // start value for next page link
}

// ComputeRange calculates display range values given the current start index
// and number of items shown.
func ComputeRange(start, shown int) Range {
	if shown == 0 {
		return Range{Start: 0, End: 0, PrevStart: 1, NextStart: 1}
	}

	prevStart := start - PageSize
	if prevStart < 1 {
		prevStart = 1
	}

	return Range{
		Start:     start,
		End:       start + shown - 1,
		PrevStart: prevStart,
		NextStart: start + shown,
	}
}
