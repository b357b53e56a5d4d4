package pagination

import "testing"

func TestParsePage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "valid page", raw: "3", want: 3},
		{name: "missing", raw: "", want: 1},
		{name: "not a number", raw: "abc", want: 1},
		{name: "zero", raw: "0", want: 1},
		{name: "negative", raw: "-2", want: 1},
		{name: "float", raw: "1.5", want: 1},
		{name: "huge page clamps instead of overflowing", raw: "9223372036854775807", want: maxPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePage(tt.raw); got != tt.want {
				t.Fatalf("ParsePage(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPagerMeta(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		page     int
		total    int64
		wantMeta Meta
	}{
		{
			name:  "middle page",
			size:  20,
			page:  2,
			total: 45,
			wantMeta: Meta{
				TotalItems: 45, CurrentPage: 2,
				HasNextPage: true, HasPreviousPage: true,
				NextPage: 3, PreviousPage: 1, LastPage: 3,
			},
		},
		{
			name:  "last partial page",
			size:  20,
			page:  3,
			total: 45,
			wantMeta: Meta{
				TotalItems: 45, CurrentPage: 3,
				HasNextPage: false, HasPreviousPage: true,
				NextPage: 4, PreviousPage: 2, LastPage: 3,
			},
		},
		{
			name:  "exact boundary",
			size:  20,
			page:  2,
			total: 40,
			wantMeta: Meta{
				TotalItems: 40, CurrentPage: 2,
				HasNextPage: false, HasPreviousPage: true,
				NextPage: 3, PreviousPage: 1, LastPage: 2,
			},
		},
		{
			name:  "empty set",
			size:  20,
			page:  1,
			total: 0,
			wantMeta: Meta{
				TotalItems: 0, CurrentPage: 1,
				HasNextPage: false, HasPreviousPage: false,
				NextPage: 2, PreviousPage: 0, LastPage: 0,
			},
		},
		{
			name:  "page past the end keeps its metadata",
			size:  20,
			page:  9,
			total: 45,
			wantMeta: Meta{
				TotalItems: 45, CurrentPage: 9,
				HasNextPage: false, HasPreviousPage: true,
				NextPage: 10, PreviousPage: 8, LastPage: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPager(tt.size).Meta(tt.page, tt.total)
			if got != tt.wantMeta {
				t.Fatalf("Meta(%d, %d) = %+v, want %+v", tt.page, tt.total, got, tt.wantMeta)
			}
		})
	}
}

func TestPagerOffset(t *testing.T) {
	tests := []struct {
		name string
		size int
		page int
		want int
	}{
		{name: "first page", size: 20, page: 1, want: 0},
		{name: "third page", size: 20, page: 3, want: 40},
		{name: "invalid size falls back to default", size: 0, page: 2, want: DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPager(tt.size).Offset(tt.page); got != tt.want {
				t.Fatalf("Offset(%d) = %d, want %d", tt.page, got, tt.want)
			}
		})
	}

	t.Run("largest parseable page stays non-negative", func(t *testing.T) {
		page := ParsePage("9223372036854775807")
		if got := NewPager(20).Offset(page); got < 0 {
			t.Fatalf("Offset(%d) = %d, want >= 0", page, got)
		}
	})
}
