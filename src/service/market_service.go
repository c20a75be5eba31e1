package service

import (
	"time"

	"coin-market-api/src/analysis"
	"coin-market-api/src/helpers"
	"coin-market-api/src/interfaces"
	"coin-market-api/src/logger"
	"coin-market-api/src/models"
	"coin-market-api/src/utils"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// MarketService answers price, symbol list and historical queries from the
// sample store.
type MarketService struct {
	Store      interfaces.IMarketStore
	Validator  *utils.DateRangeValidator
	VsCurrency string
	Location   *time.Location
	Logger     *logger.Logger
}

// -----------------------------------------------------------------------------

func NewMarketService(store interfaces.IMarketStore, cfg *models.MConfig, log *logger.Logger) *MarketService {
	return &MarketService{
		Store:      store,
		Validator:  utils.NewDateRangeValidator(cfg.Market.MaxHistoricalDays, log),
		VsCurrency: cfg.Market.VsCurrency,
		Location:   time.Local,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

// GetPrice returns the current price of coinID, or 0 if it is unknown.
func (s *MarketService) GetPrice(coinID string) float64 {
	coin, ok := s.Store.Coin(coinID)
	if !ok {
		return 0
	}
	price, ok := coin.MarketData.CurrentPrice[s.VsCurrency]
	if !ok {
		s.Logger.Debug("No %s price for %s", s.VsCurrency, coinID)
		return 0
	}
	return price
}

// -----------------------------------------------------------------------------

// ListSymbols returns the known ids of coinIDs with their price, in input order.
func (s *MarketService) ListSymbols(coinIDs []string) []models.MSymbolPrice {
	symbols := make([]models.MSymbolPrice, 0, len(coinIDs))
	for _, id := range coinIDs {
		if _, ok := s.Store.Coin(id); !ok {
			continue
		}
		symbols = append(symbols, models.MSymbolPrice{
			Symbol: id,
			Price:  decimal.NewFromFloat(s.GetPrice(id)).String(),
		})
	}
	return symbols
}

// -----------------------------------------------------------------------------

// GetHistorical validates the range and formats the series of coinID.
// The returned response always carries the effective dates, even with an
// error; lookup failures are *helpers.LookupError.
func (s *MarketService) GetHistorical(coinID, startDate, endDate, interval string) (models.MKlineResponse, error) {
	startDate, endDate, message := s.Validator.Validate(startDate, endDate)

	resp := models.MKlineResponse{
		Data: []models.MKlinePoint{},
		Info: models.MKlineInfo{StartDate: startDate, EndDate: endDate},
	}

	series, ok := s.Store.Historical(coinID)
	if !ok {
		return resp, helpers.NewLookupError(coinID, helpers.ErrCoinNotFound)
	}
	coin, ok := s.Store.Coin(coinID)
	if !ok {
		return resp, helpers.NewLookupError(coinID, helpers.ErrNoCoinMetadata)
	}
	if len(series.Prices) == 0 {
		return resp, helpers.NewLookupError(coinID, helpers.ErrNoPriceData)
	}

	summary := analysis.BuildCoinSummary(coin, s.VsCurrency)
	resp.Data = analysis.FormatKlines(series.Prices, series.TotalVolumes, series.MarketCaps, summary, s.Location)
	if message != "" {
		resp.Info.Message = &message
	}

	s.Logger.Debug("Historical %s (%s) %s..%s: %d points", coinID, interval, startDate, endDate, len(resp.Data))
	return resp, nil
}
