package server

import (
	"errors"
	"net/http"

	"coin-market-api/src/helpers"
	"coin-market-api/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Cryptocurrency Market API"})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, s.Market.ListSymbols(s.Config.Market.DefaultSymbols))
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPrice(c *gin.Context) {
	coinID := c.Param("symbol")
	c.JSON(http.StatusOK, gin.H{
		"symbol": coinID,
		"price":  s.Market.GetPrice(coinID),
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getKlines(c *gin.Context) {
	coinID := c.DefaultQuery("symbol", s.Config.Market.DefaultSymbol)
	interval := c.DefaultQuery("interval", s.Config.Market.DefaultInterval)
	startDate := c.DefaultQuery("start_date", s.Market.Validator.DefaultStartDate())
	endDate := c.DefaultQuery("end_date", s.Market.Validator.DefaultEndDate())

	result, err := s.Market.GetHistorical(coinID, startDate, endDate, interval)
	if err != nil {
		var lookupErr *helpers.LookupError
		if errors.As(err, &lookupErr) {
			s.Logger.Info("Klines lookup for %s failed: %v", coinID, err)
			c.JSON(http.StatusBadRequest, models.MKlineErrorResponse{
				Data:  []models.MKlinePoint{},
				Error: lookupErr.Error(),
				Info: models.MKlineErrorInfo{
					StartDate: result.Info.StartDate,
					EndDate:   result.Info.EndDate,
					Error:     lookupErr.Error(),
				},
			})
			return
		}

		s.Logger.Error("Error in getKlines for %s: %v", coinID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
