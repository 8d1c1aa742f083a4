package shaper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultLabels are the fixed age groups of the histogram, in display order.
var DefaultLabels = []string{
	"20-29",
	"30-39",
	"40-49",
	"50-59",
	"60-69",
	"70-79",
	">=80",
}

// Range is the numeric interpretation of a bucket label. Max is inclusive;
// open-ended labels carry math.MaxInt.
type Range struct {
	Label string
	Min   int
	Max   int
}

// Contains reports whether age falls inside the range.
func (r Range) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// ParseRange parses "a-b" into [a,b] and ">=a" into [a,∞).
func ParseRange(label string) (Range, error) {
	s := strings.TrimSpace(label)

	if rest, ok := strings.CutPrefix(s, ">="); ok {
		lo, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return Range{}, fmt.Errorf("bucket %q: invalid lower bound: %w", label, err)
		}
		return Range{Label: label, Min: lo, Max: math.MaxInt}, nil
	}

	loStr, hiStr, ok := strings.Cut(s, "-")
	if !ok {
		return Range{}, fmt.Errorf("bucket %q: expected \"a-b\" or \">=a\"", label)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(loStr))
	if err != nil {
		return Range{}, fmt.Errorf("bucket %q: invalid lower bound: %w", label, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(hiStr))
	if err != nil {
		return Range{}, fmt.Errorf("bucket %q: invalid upper bound: %w", label, err)
	}
	if hi < lo {
		return Range{}, fmt.Errorf("bucket %q: upper bound below lower bound", label)
	}
	return Range{Label: label, Min: lo, Max: hi}, nil
}

// ParseRanges parses labels in order. Overlaps are allowed; the first
// matching range wins when bucketing.
func ParseRanges(labels []string) ([]Range, error) {
	ranges := make([]Range, 0, len(labels))
	for _, l := range labels {
		r, err := ParseRange(l)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}
