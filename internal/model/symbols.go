package model

// SymbolInfo pairs a ticker with its display name.
type SymbolInfo struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

var stockSymbols = []SymbolInfo{
	{"AAPL", "Apple Inc."},
	{"ABNB", "Airbnb Inc."},
	{"ADBE", "Adobe Inc."},
	{"AMD", "Advanced Micro Devices Inc."},
	{"AMZN", "Amazon.com Inc."},
	{"BAC", "Bank of America Corporation"},
	{"BABA", "Alibaba Group Holding Limited"},
	{"BRK.B", "Berkshire Hathaway Inc. (Class B)"},
	{"CRM", "Salesforce Inc."},
	{"CSCO", "Cisco Systems Inc."},
	{"CVX", "Chevron Corporation"},
	{"DIS", "The Walt Disney Company"},
	{"F", "Ford Motor Company"},
	{"GM", "General Motors Company"},
	{"GOOGL", "Alphabet Inc. (Class A)"},
	{"HD", "The Home Depot Inc."},
	{"INTC", "Intel Corporation"},
	{"JPM", "JPMorgan Chase & Co."},
	{"KO", "The Coca-Cola Company"},
	{"LYFT", "Lyft Inc."},
	{"MA", "Mastercard Incorporated"},
	{"MCD", "McDonald's Corporation"},
	{"META", "Meta Platforms Inc."},
	{"MRK", "Merck & Co. Inc."},
	{"MSFT", "Microsoft Corporation"},
	{"NFLX", "Netflix Inc."},
	{"NKE", "Nike Inc."},
	{"NVDA", "NVIDIA Corporation"},
	{"ORCL", "Oracle Corporation"},
	{"PEP", "PepsiCo Inc."},
	{"PFE", "Pfizer Inc."},
	{"PLTR", "Palantir Technologies Inc."},
	{"PYPL", "PayPal Holdings Inc."},
	{"ROKU", "Roku Inc."},
	{"SHOP", "Shopify Inc."},
	{"SOFI", "SoFi Technologies Inc."},
	{"SOUN", "SoundHound AI Inc."},
	{"T", "AT&T Inc."},
	{"TSLA", "Tesla Inc."},
	{"UBER", "Uber Technologies Inc."},
	{"UNH", "UnitedHealth Group Incorporated"},
	{"V", "Visa Inc."},
	{"WMT", "Walmart Inc."},
	{"XOM", "Exxon Mobil Corporation"},
	{"ZM", "Zoom Video Communications Inc."},
}

var cryptoSymbols = []SymbolInfo{
	{"BTC", "Bitcoin"},
	{"ETH", "Ethereum"},
	{"BNB", "BNB"},
	{"SOL", "Solana"},
	{"XRP", "XRP"},
	{"ADA", "Cardano"},
	{"DOGE", "Dogecoin"},
	{"AVAX", "Avalanche"},
	{"TRX", "TRON"},
	{"DOT", "Polkadot"},
	{"MATIC", "Polygon"},
	{"LINK", "Chainlink"},
	{"LTC", "Litecoin"},
	{"SHIB", "Shiba Inu"},
	{"BCH", "Bitcoin Cash"},
	{"XLM", "Stellar"},
	{"UNI", "Uniswap"},
	{"ATOM", "Cosmos"},
	{"ETC", "Ethereum Classic"},
	{"APT", "Aptos"},
}

var forexSymbols = []SymbolInfo{
	{"EUR", "Euro"},
	{"GBP", "British Pound"},
	{"JPY", "Japanese Yen"},
	{"CHF", "Swiss Franc"},
	{"CAD", "Canadian Dollar"},
	{"AUD", "Australian Dollar"},
	{"NZD", "New Zealand Dollar"},
}

var symbolCatalog = map[AssetClass][]SymbolInfo{
	AssetStocks: stockSymbols,
	AssetCrypto: cryptoSymbols,
	AssetForex:  forexSymbols,
}

// Symbols returns the static catalog for an asset class.
func Symbols(class AssetClass) []SymbolInfo {
	return symbolCatalog[class]
}

// KnownSymbol reports whether a ticker belongs to the class catalog.
func KnownSymbol(class AssetClass, symbol string) bool {
	for _, info := range symbolCatalog[class] {
		if info.Symbol == symbol {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable name for a ticker, falling back to
// the ticker itself.
func DisplayName(class AssetClass, symbol string) string {
	for _, info := range symbolCatalog[class] {
		if info.Symbol == symbol {
			return info.Name
		}
	}
	return symbol
}
