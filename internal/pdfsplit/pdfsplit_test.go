package pdfsplit

import "testing"

func TestChunkRanges(t *testing.T) {
	tests := []struct {
		name          string
		pageCount     int
		pagesPerChunk int
		want          []Range
	}{
		{
			name:          "below threshold single range",
			pageCount:     10,
			pagesPerChunk: 15,
			want:          []Range{{0, 10}},
		},
		{
			name:          "exactly one chunk",
			pageCount:     15,
			pagesPerChunk: 15,
			want:          []Range{{0, 15}},
		},
		{
			name:          "forty pages splits into three",
			pageCount:     40,
			pagesPerChunk: 15,
			want:          []Range{{0, 15}, {15, 30}, {30, 40}},
		},
		{
			name:          "exact multiple",
			pageCount:     30,
			pagesPerChunk: 15,
			want:          []Range{{0, 15}, {15, 30}},
		},
		{
			name:          "one page over",
			pageCount:     16,
			pagesPerChunk: 15,
			want:          []Range{{0, 15}, {15, 16}},
		},
		{
			name:          "zero pages",
			pageCount:     0,
			pagesPerChunk: 15,
			want:          nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkRanges(tt.pageCount, tt.pagesPerChunk)
			if len(got) != len(tt.want) {
				t.Fatalf("ChunkRanges(%d, %d) returned %d ranges, want %d",
					tt.pageCount, tt.pagesPerChunk, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("range[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkRangesCoverAllPages(t *testing.T) {
	for pageCount := 1; pageCount <= 100; pageCount++ {
		ranges := ChunkRanges(pageCount, PagesPerChunk)

		covered := 0
		prevEnd := 0
		for _, r := range ranges {
			if r.Start != prevEnd {
				t.Fatalf("pageCount=%d: range %+v does not start at previous end %d", pageCount, r, prevEnd)
			}
			if r.Pages() > PagesPerChunk {
				t.Fatalf("pageCount=%d: range %+v exceeds %d pages", pageCount, r, PagesPerChunk)
			}
			covered += r.Pages()
			prevEnd = r.End
		}
		if covered != pageCount {
			t.Fatalf("pageCount=%d: ranges cover %d pages", pageCount, covered)
		}
	}
}
