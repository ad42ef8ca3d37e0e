package model

import "fmt"

// RangeKey is one of the fixed display ranges a chart can show.
type RangeKey string

const (
	RangeDay     RangeKey = "1D"
	RangeWeek    RangeKey = "1W"
	RangeMonth   RangeKey = "1M"
	Range3Month  RangeKey = "3M"
	RangeYTD     RangeKey = "YTD"
	RangeYear    RangeKey = "1Y"
	Range5Year   RangeKey = "5Y"
)

// ResolutionSpec maps a display range to the backend resolution token and the
// maximum number of candles kept for it.
type ResolutionSpec struct {
	Resolution string
	MaxCandles int
}

// rangeTable is the closed mapping from display range to resolution.
// Caps: 1D = 288 five-minute buckets, 1W = 336 half-hour buckets,
// 1M = 360 two-hour buckets, 3M = 540 four-hour buckets, YTD/1Y = 366 daily
// candles, 5Y = 260 weekly candles.
var rangeTable = map[RangeKey]ResolutionSpec{
	RangeDay:    {Resolution: "5", MaxCandles: 288},
	RangeWeek:   {Resolution: "30", MaxCandles: 336},
	RangeMonth:  {Resolution: "120", MaxCandles: 360},
	Range3Month: {Resolution: "240", MaxCandles: 540},
	RangeYTD:    {Resolution: "D", MaxCandles: 366},
	RangeYear:   {Resolution: "D", MaxCandles: 366},
	Range5Year:  {Resolution: "W", MaxCandles: 260},
}

// AllRanges lists every display range in presentation order.
func AllRanges() []RangeKey {
	return []RangeKey{RangeDay, RangeWeek, RangeMonth, Range3Month, RangeYTD, RangeYear, Range5Year}
}

// ParseRangeKey validates a raw range string.
func ParseRangeKey(s string) (RangeKey, error) {
	if _, ok := rangeTable[RangeKey(s)]; !ok {
		return "", fmt.Errorf("unknown range: %q", s)
	}
	return RangeKey(s), nil
}

// ResolutionFor returns the resolution spec for a display range. The range
// set is closed; an unmapped key is a programming error, not a runtime
// condition, so this panics rather than returning a fallback.
func ResolutionFor(r RangeKey) ResolutionSpec {
	spec, ok := rangeTable[r]
	if !ok {
		panic(fmt.Sprintf("model: no resolution mapped for range %q", r))
	}
	return spec
}
