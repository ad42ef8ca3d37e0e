package model

import "fmt"

// AssetClass identifies one of the tradable market segments. The value
// doubles as the path segment used by the backend API.
type AssetClass string

const (
	AssetStocks AssetClass = "stocks"
	AssetCrypto AssetClass = "crypto"
	AssetForex  AssetClass = "forex"
)

// AllAssetClasses lists every supported asset class.
func AllAssetClasses() []AssetClass {
	return []AssetClass{AssetStocks, AssetCrypto, AssetForex}
}

// ParseAssetClass validates a raw class string.
func ParseAssetClass(s string) (AssetClass, error) {
	switch AssetClass(s) {
	case AssetStocks, AssetCrypto, AssetForex:
		return AssetClass(s), nil
	}
	return "", fmt.Errorf("unknown asset class: %q", s)
}

// HasTradingSession reports whether the class trades in discrete sessions.
// Crypto markets never close; stocks and forex observe market hours.
func (a AssetClass) HasTradingSession() bool {
	return a == AssetStocks || a == AssetForex
}

// QuantityStep returns the smallest order-quantity increment for an asset
// class at a given price. Equities trade in whole shares; fractional assets
// use a step derived from the price magnitude so that cheap symbols are not
// ordered in dust-sized amounts.
func QuantityStep(class AssetClass, price float64) float64 {
	if class == AssetStocks {
		return 1
	}
	if !(price > 0) {
		return 0.00000001
	}
	switch {
	case price > 1000:
		return 0.00001
	case price > 100:
		return 0.0001
	case price > 10:
		return 0.001
	case price > 1:
		return 0.01
	case price > 0.1:
		return 0.1
	default:
		return 1
	}
}

// SymbolKey identifies a symbol within an asset class.
type SymbolKey struct {
	Class  AssetClass
	Symbol string
}

func (k SymbolKey) String() string {
	return string(k.Class) + ":" + k.Symbol
}

// CacheKey identifies one cached candle series: a symbol plus the display
// range it was fetched for. Entries for different ranges of the same symbol
// are independent.
type CacheKey struct {
	SymbolKey
	Range RangeKey
}

func (k CacheKey) String() string {
	return k.SymbolKey.String() + "|" + string(k.Range)
}
