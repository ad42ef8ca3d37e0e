package handler

import (
	"net/http"

	"github.com/yourorg/papertrade/internal/model"
	"github.com/yourorg/papertrade/internal/store"
	"github.com/yourorg/papertrade/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MarketHandler serves cached market data to the UI. Reads never trigger a
// backend fetch; the refresh loops are the only writers.
type MarketHandler struct {
	candles *store.CandleStore
	quotes  *store.QuoteStore
	status  *store.StatusStore
	logger  *zap.Logger
}

// NewMarketHandler creates a new market data handler
func NewMarketHandler(candles *store.CandleStore, quotes *store.QuoteStore, status *store.StatusStore, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{
		candles: candles,
		quotes:  quotes,
		status:  status,
		logger:  logger,
	}
}

// GetPrice handles retrieving the latest cached price for a symbol
// GET /api/v1/market/:class/price?symbol=
func (h *MarketHandler) GetPrice(c *gin.Context) {
	class, symbol, ok := h.symbolParams(c)
	if !ok {
		return
	}

	quote, found := h.quotes.Quote(model.SymbolKey{Class: class, Symbol: symbol})
	if !found {
		utils.SendErrorResponse(c, http.StatusNotFound, "No price cached for symbol")
		return
	}

	c.JSON(http.StatusOK, quote)
}

// GetCandles handles retrieving the cached candle series for a symbol/range
// GET /api/v1/market/:class/history?symbol=&range=
func (h *MarketHandler) GetCandles(c *gin.Context) {
	class, symbol, ok := h.symbolParams(c)
	if !ok {
		return
	}

	rangeKey, err := model.ParseRangeKey(c.DefaultQuery("range", string(model.RangeDay)))
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid range")
		return
	}

	key := model.CacheKey{
		SymbolKey: model.SymbolKey{Class: class, Symbol: symbol},
		Range:     rangeKey,
	}
	series, found := h.candles.Get(key)
	if !found {
		utils.SendErrorResponse(c, http.StatusNotFound, "No history cached for symbol and range")
		return
	}

	c.JSON(http.StatusOK, series)
}

// GetMarketStatus handles retrieving the cached open/closed flag for a class
// GET /api/v1/market/:class/market-status
func (h *MarketHandler) GetMarketStatus(c *gin.Context) {
	class, err := model.ParseAssetClass(c.Param("class"))
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid asset class")
		return
	}

	c.JSON(http.StatusOK, gin.H{"isOpen": h.status.IsOpen(class)})
}

// GetSymbols handles listing the tradable symbols for a class
// GET /api/v1/market/:class/symbols
func (h *MarketHandler) GetSymbols(c *gin.Context) {
	class, err := model.ParseAssetClass(c.Param("class"))
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid asset class")
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbols": model.Symbols(class)})
}

func (h *MarketHandler) symbolParams(c *gin.Context) (model.AssetClass, string, bool) {
	class, err := model.ParseAssetClass(c.Param("class"))
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid asset class")
		return "", "", false
	}

	symbol := c.Query("symbol")
	if symbol == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Symbol is required")
		return "", "", false
	}
	if !model.KnownSymbol(class, symbol) {
		utils.SendErrorResponse(c, http.StatusNotFound, "Unknown symbol")
		return "", "", false
	}

	return class, symbol, true
}
