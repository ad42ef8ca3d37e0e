package model

import "testing"

func TestQuantityStep_StocksAreWholeShares(t *testing.T) {
	for _, price := range []float64{0.5, 10, 5000} {
		if step := QuantityStep(AssetStocks, price); step != 1 {
			t.Errorf("price %.2f: expected step 1, got %v", price, step)
		}
	}
}

func TestQuantityStep_FractionalByPriceMagnitude(t *testing.T) {
	cases := []struct {
		price float64
		step  float64
	}{
		{50000, 0.00001},
		{500, 0.0001},
		{50, 0.001},
		{5, 0.01},
		{0.5, 0.1},
		{0.05, 1},
	}
	for _, tc := range cases {
		if step := QuantityStep(AssetCrypto, tc.price); step != tc.step {
			t.Errorf("price %v: expected step %v, got %v", tc.price, tc.step, step)
		}
	}
}

func TestQuantityStep_UnknownPrice(t *testing.T) {
	if step := QuantityStep(AssetCrypto, 0); step != 0.00000001 {
		t.Errorf("expected minimum step for zero price, got %v", step)
	}
	if step := QuantityStep(AssetForex, -1); step != 0.00000001 {
		t.Errorf("expected minimum step for negative price, got %v", step)
	}
}

func TestHasTradingSession(t *testing.T) {
	if !AssetStocks.HasTradingSession() || !AssetForex.HasTradingSession() {
		t.Error("stocks and forex observe market hours")
	}
	if AssetCrypto.HasTradingSession() {
		t.Error("crypto markets never close")
	}
}

func TestCacheKeyString(t *testing.T) {
	key := CacheKey{
		SymbolKey: SymbolKey{Class: AssetCrypto, Symbol: "BTC"},
		Range:     RangeDay,
	}
	if got := key.String(); got != "crypto:BTC|1D" {
		t.Errorf("unexpected cache key: %s", got)
	}
}
