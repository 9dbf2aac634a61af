package provider

import (
	"errors"
	"io"
	"strings"

	"github.com/samber/lo"
)

type sliceIterator struct {
	segments []Segment
	pos      int
}

// NewSliceIterator serves segments that are already in memory, for backends
// that return the whole result at once.
func NewSliceIterator(segments []Segment) SegmentIterator {
	return &sliceIterator{segments: segments}
}

func (it *sliceIterator) Next() (Segment, error) {
	if it.pos >= len(it.segments) {
		return Segment{}, io.EOF
	}
	seg := it.segments[it.pos]
	it.pos++
	return seg, nil
}

func (it *sliceIterator) Close() error {
	it.pos = len(it.segments)
	return nil
}

// Collect drains the iterator and returns its segments in order.
func Collect(it SegmentIterator) ([]Segment, error) {
	var segments []Segment
	for {
		seg, err := it.Next()
		if errors.Is(err, io.EOF) {
			return segments, nil
		}
		if err != nil {
			return segments, err
		}
		segments = append(segments, seg)
	}
}

// JoinText concatenates segment texts with single spaces and trims the result.
func JoinText(segments []Segment) string {
	texts := lo.Map(segments, func(s Segment, _ int) string { return s.Text })
	return strings.TrimSpace(strings.Join(texts, " "))
}
