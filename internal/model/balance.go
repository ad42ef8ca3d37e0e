package model

// Holdings maps asset symbol to held quantity.
type Holdings map[string]float64

// Balance is the account's virtual balance: free cash plus holdings per
// asset class. There is one live Balance per session and it is only ever
// replaced wholesale by a refetch, never patched in place.
type Balance struct {
	Cash     float64                `json:"cash"`
	Holdings map[AssetClass]Holdings `json:"holdings"`
}

// Quantity returns the held quantity for a symbol, zero when absent.
func (b *Balance) Quantity(class AssetClass, symbol string) float64 {
	if b == nil || b.Holdings == nil {
		return 0
	}
	return b.Holdings[class][symbol]
}

// Clone returns a deep copy so store readers cannot mutate the live balance.
func (b *Balance) Clone() *Balance {
	if b == nil {
		return nil
	}
	out := &Balance{Cash: b.Cash}
	if b.Holdings != nil {
		out.Holdings = make(map[AssetClass]Holdings, len(b.Holdings))
		for class, holdings := range b.Holdings {
			copied := make(Holdings, len(holdings))
			for sym, qty := range holdings {
				copied[sym] = qty
			}
			out.Holdings[class] = copied
		}
	}
	return out
}
