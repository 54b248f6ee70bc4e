package pagination

import "testing"

func TestNormalizeClampsBounds(t *testing.T) {
	cases := []struct {
		name      string
		in        Pagination
		wantPage  int
		wantLimit int
	}{
		{"defaults", Pagination{}, 1, 10},
		{"negative page", Pagination{Page: -3, Limit: 20}, 1, 20},
		{"limit over max", Pagination{Page: 2, Limit: 500}, 2, 100},
		{"kept as is", Pagination{Page: 4, Limit: 25}, 4, 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize(10, 100)
			if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", got.Page, got.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	p := Pagination{Page: 3, Limit: 25}
	if got := p.Offset(); got != 50 {
		t.Fatalf("expected offset 50, got %d", got)
	}
}

func TestBuildPageInfo(t *testing.T) {
	info := BuildPageInfo(Pagination{Page: 2, Limit: 10}, 31)
	if info.TotalPages != 4 {
		t.Fatalf("expected 4 pages for 31 items, got %d", info.TotalPages)
	}
	if info.TotalItems != 31 || info.Page != 2 || info.Limit != 10 {
		t.Fatalf("unexpected page info: %+v", info)
	}

	info = BuildPageInfo(Pagination{Page: 1, Limit: 10}, 30)
	if info.TotalPages != 3 {
		t.Fatalf("expected 3 pages for 30 items, got %d", info.TotalPages)
	}
}
