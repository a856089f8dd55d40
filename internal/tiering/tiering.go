// Package tiering resolves scalar values against sorted, non-overlapping
// interval sets and ordinal grade scales. The pricing engine and the search
// filter resolver share it so that the buy path and the search path apply the
// exact same boundary rule.
package tiering

import "strings"

// Interval is a contiguous sub-range of a scalar domain mapped to a single
// multiplier.
type Interval struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Multiplier float64 `json:"multiplier"`
}

// Contains reports whether v falls inside the interval. Intervals are
// half-open [min, max) except when last is set, in which case the upper bound
// is included so a probe can hit the domain's exact ceiling.
func (i Interval) Contains(v float64, last bool) bool {
	if last {
		return v >= i.Min && v <= i.Max
	}
	return v >= i.Min && v < i.Max
}

// Resolve returns the interval containing v. The intervals must be sorted by
// Min and non-overlapping; all are half-open except the last, which is closed.
// A probe outside the domain returns ok=false and the caller applies its own
// policy default.
func Resolve(intervals []Interval, v float64) (Interval, bool) {
	for idx, in := range intervals {
		if in.Contains(v, idx == len(intervals)-1) {
			return in, true
		}
	}
	return Interval{}, false
}

// ScaleRange translates a min/max selection over an ordered grade scale into
// the inclusive slice of labels between them. A "_MAX" suffix on either bound
// (the UI's marker for the top slider stop) is stripped before matching;
// matching is case-insensitive. A bound that does not appear on the scale is
// treated as unbounded on that side; two missing bounds return nil, meaning
// no constraint.
func ScaleRange(labels []string, min, max string) []string {
	minIdx := scaleIndex(labels, min)
	maxIdx := scaleIndex(labels, max)

	if minIdx == -1 && maxIdx == -1 {
		return nil
	}
	if minIdx == -1 {
		minIdx = 0
	}
	if maxIdx == -1 {
		maxIdx = len(labels) - 1
	}
	if minIdx > maxIdx {
		return nil
	}

	out := make([]string, 0, maxIdx-minIdx+1)
	out = append(out, labels[minIdx:maxIdx+1]...)
	return out
}

func scaleIndex(labels []string, value string) int {
	value = strings.TrimSuffix(strings.TrimSuffix(value, "_MAX"), "_max")
	if value == "" {
		return -1
	}
	for i, label := range labels {
		if strings.EqualFold(label, value) {
			return i
		}
	}
	return -1
}
