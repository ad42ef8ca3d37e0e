package model

import "sort"

// Candle is one price sample for a fixed time bucket. Close is always
// populated; open/high/low/volume may be zero for feeds that only deliver
// closing prices.
type Candle struct {
	Timestamp int64   `json:"timestamp"` // epoch seconds, UTC
	Open      float64 `json:"open,omitempty"`
	High      float64 `json:"high,omitempty"`
	Low       float64 `json:"low,omitempty"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume,omitempty"`
}

// CandleSeries is an ordered series of candles for one symbol at one
// resolution. Timestamps are non-decreasing.
type CandleSeries struct {
	Symbol     string   `json:"symbol"`
	Resolution string   `json:"resolution"`
	Candles    []Candle `json:"history"`
}

// Clone returns a deep copy of the series so callers can hand out read-only
// views without sharing the underlying slice.
func (s *CandleSeries) Clone() *CandleSeries {
	if s == nil {
		return nil
	}
	out := &CandleSeries{
		Symbol:     s.Symbol,
		Resolution: s.Resolution,
	}
	if s.Candles != nil {
		out.Candles = make([]Candle, len(s.Candles))
		copy(out.Candles, s.Candles)
	}
	return out
}

// Sorted reports whether candle timestamps are non-decreasing.
func (s *CandleSeries) Sorted() bool {
	for i := 1; i < len(s.Candles); i++ {
		if s.Candles[i-1].Timestamp > s.Candles[i].Timestamp {
			return false
		}
	}
	return true
}

// SortCandles re-sorts the series ascending by timestamp. Writers can append
// out of order, so consumers sort defensively before trusting the order.
func (s *CandleSeries) SortCandles() {
	if s.Sorted() {
		return
	}
	sort.SliceStable(s.Candles, func(i, j int) bool {
		return s.Candles[i].Timestamp < s.Candles[j].Timestamp
	})
}

// Truncate keeps the most recent max candles, preserving ascending order.
// A non-positive max leaves the series unchanged.
func (s *CandleSeries) Truncate(max int) {
	if max > 0 && len(s.Candles) > max {
		s.Candles = s.Candles[len(s.Candles)-max:]
	}
}
