package stats

import "testing"

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name        string
		page, limit string
		def         int
		want        PageParams
	}{
		{"defaults", "", "", 20, PageParams{Page: 1, Limit: 20}},
		{"explicit", "3", "10", 20, PageParams{Page: 3, Limit: 10}},
		{"credential default", "", "", 50, PageParams{Page: 1, Limit: 50}},
		{"non-numeric", "two", "ten", 20, PageParams{Page: 1, Limit: 20}},
		{"zero coerced", "0", "0", 20, PageParams{Page: 1, Limit: 20}},
		{"negative coerced", "-5", "-1", 20, PageParams{Page: 1, Limit: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePageParams(tt.page, tt.limit, tt.def); got != tt.want {
				t.Errorf("ParsePageParams(%q, %q, %d) = %+v, want %+v", tt.page, tt.limit, tt.def, got, tt.want)
			}
		})
	}
}

func TestPageSlice(t *testing.T) {
	groups := make([]int, 45)
	for i := range groups {
		groups[i] = i + 1 // ranks 1..45
	}

	p := PageParams{Page: 2, Limit: 20}
	page := pageSlice(groups, p)

	if len(page) != 20 {
		t.Fatalf("len(page) = %d, want 20", len(page))
	}
	if page[0] != 21 || page[19] != 40 {
		t.Errorf("page spans ranks %d..%d, want 21..40", page[0], page[19])
	}

	last := pageSlice(groups, PageParams{Page: 3, Limit: 20})
	if len(last) != 5 {
		t.Errorf("last page len = %d, want 5", len(last))
	}
	past := pageSlice(groups, PageParams{Page: 4, Limit: 20})
	if past == nil || len(past) != 0 {
		t.Errorf("page past end = %v, want empty non-nil slice", past)
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		p         PageParams
		total     int64
		wantPages int64
	}{
		{"45 groups at 20", PageParams{Page: 2, Limit: 20}, 45, 3},
		{"exact multiple", PageParams{Page: 1, Limit: 20}, 40, 2},
		{"empty", PageParams{Page: 1, Limit: 20}, 0, 0},
		{"single partial page", PageParams{Page: 1, Limit: 50}, 7, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.p, tt.total)
			if got.Total != tt.total || got.TotalPages != tt.wantPages {
				t.Errorf("NewPagination = %+v, want total %d pages %d", got, tt.total, tt.wantPages)
			}
			if got.Page != tt.p.Page || got.Limit != tt.p.Limit {
				t.Errorf("envelope echoes %d/%d, want %d/%d", got.Page, got.Limit, tt.p.Page, tt.p.Limit)
			}
		})
	}
}
