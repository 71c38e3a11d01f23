package paging

import (
	"net/http/httptest"
	"testing"
)

func TestLimitPlusOne(t *testing.T) {
	want := int64(PageSize + 1)
	got := LimitPlusOne()
	if got != want {
		t.Errorf("LimitPlusOne() = %d, want %d", got, want)
	}
}

func TestParseStart(t *testing.T) {
	tests := []struct {
		target string
		want   int
	}{
		{"/?start=1", 1},
		{"/?start=51", 51},
		{"/", 1},
		{"/?start=0", 1},
		{"/?start=-5", 1},
		{"/?start=abc", 1},
	}
	for _, tc := range tests {
		r := httptest.NewRequest("GET", tc.target, nil)
		if got := ParseStart(r); got != tc.want {
			t.Errorf("ParseStart(%q) = %d, want %d", tc.target, got, tc.want)
		}
	}
}

func TestTrimPage(t *testing.T) {
	tests := []struct {
		name       string
		rows       []int
		start      int
		wantLen    int
		wantResult Result
	}{
		{
			name:       "first page with no extra",
			rows:       []int{1, 2, 3},
			start:      1,
			wantLen:    3,
			wantResult: Result{HasPrev: false, HasNext: false},
		},
		{
			name:       "first page with extra (has next)",
			rows:       make([]int, PageSize+1),
			start:      1,
			wantLen:    PageSize,
			wantResult: Result{HasPrev: false, HasNext: true},
		},
		{
			name:       "later page with extra",
			rows:       make([]int, PageSize+1),
			start:      PageSize + 1,
			wantLen:    PageSize,
			wantResult: Result{HasPrev: true, HasNext: true},
		},
		{
			name:       "later page without extra",
			rows:       []int{1, 2, 3},
			start:      PageSize + 1,
			wantLen:    3,
			wantResult: Result{HasPrev: true, HasNext: false},
		},
		{
			name:       "empty rows",
			rows:       []int{},
			start:      1,
			wantLen:    0,
			wantResult: Result{HasPrev: false, HasNext: false},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows := tc.rows
			got := TrimPage(&rows, tc.start)
			if len(rows) != tc.wantLen {
				t.Errorf("len = %d, want %d", len(rows), tc.wantLen)
			}
			if got != tc.wantResult {
				t.Errorf("result = %+v, want %+v", got, tc.wantResult)
			}
		})
	}
}

func TestComputeRange(t *testing.T) {
	tests := []struct {
		name  string
		start int
		shown int
		want  Range
	}{
		{"empty", 1, 0, Range{Start: 0, End: 0, PrevStart: 1, NextStart: 1}},
		{"first page", 1, PageSize, Range{Start: 1, End: PageSize, PrevStart: 1, NextStart: PageSize + 1}},
		{"second page", PageSize + 1, 10, Range{Start: PageSize + 1, End: PageSize + 10, PrevStart: 1, NextStart: PageSize + 11}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeRange(tc.start, tc.shown); got != tc.want {
				t.Errorf("ComputeRange = %+v, want %+v", got, tc.want)
			}
		})
	}
}
