package pdfsplit

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PagesPerChunk is the single-shot page threshold: documents above it are
// split into ranges of at most this many pages.
const PagesPerChunk = 15

// Range is a half-open page interval [Start, End), zero-based.
type Range struct {
	Start int
	End   int
}

func (r Range) Pages() int {
	return r.End - r.Start
}

// ChunkRanges partitions pageCount pages into consecutive ranges of at most
// pagesPerChunk pages each.
func ChunkRanges(pageCount, pagesPerChunk int) []Range {
	if pageCount <= 0 || pagesPerChunk <= 0 {
		return nil
	}
	total := (pageCount + pagesPerChunk - 1) / pagesPerChunk
	ranges := make([]Range, 0, total)
	for i := 0; i < total; i++ {
		start := i * pagesPerChunk
		end := (i + 1) * pagesPerChunk
		if end > pageCount {
			end = pageCount
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges
}

// Splitter reads page counts and extracts page ranges from PDF bytes.
type Splitter struct {
	conf *model.Configuration
}

func NewSplitter() *Splitter {
	conf := model.NewDefaultConfiguration()
	// Uploaded statements are frequently produced by flaky generators;
	// relaxed validation keeps them readable.
	conf.ValidationMode = model.ValidationRelaxed
	return &Splitter{conf: conf}
}

func (s *Splitter) PageCount(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), s.conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF page count: %w", err)
	}
	return count, nil
}

// ExtractPages returns a standalone PDF containing exactly the pages in
// [start, end), zero-based.
func (s *Splitter) ExtractPages(data []byte, start, end int) ([]byte, error) {
	if start < 0 || end <= start {
		return nil, fmt.Errorf("invalid page range [%d, %d)", start, end)
	}

	var buf bytes.Buffer
	selection := []string{fmt.Sprintf("%d-%d", start+1, end)}
	if err := api.Trim(bytes.NewReader(data), &buf, selection, s.conf); err != nil {
		return nil, fmt.Errorf("failed to extract pages [%d, %d): %w", start, end, err)
	}
	return buf.Bytes(), nil
}
