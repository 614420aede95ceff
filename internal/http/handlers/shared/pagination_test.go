package shared

import "testing"

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		page, pageSize int
		wantPage       int
		wantSize       int
	}{
		{0, 0, 1, 20},
		{-5, -1, 1, 20},
		{1, 20, 1, 20},
		{3, 100, 3, 100},
		{2, 500, 2, 100},
	}
	for _, tc := range cases {
		page, size := NormalizePagination(tc.page, tc.pageSize)
		if page != tc.wantPage || size != tc.wantSize {
			t.Fatalf("(%d,%d): expected (%d,%d), got (%d,%d)",
				tc.page, tc.pageSize, tc.wantPage, tc.wantSize, page, size)
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total    int64
		pageSize int
		want     int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 0, 0},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.pageSize); got != tc.want {
			t.Fatalf("total %d size %d: expected %d pages, got %d", tc.total, tc.pageSize, tc.want, got)
		}
	}
}
