package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"atlas/server/internal/models"
)

type StockCreateRequest struct {
	PortfolioID int64   `json:"portfolio_id" binding:"required"`
	Symbol      string  `json:"symbol" binding:"required"`
	Shares      float64 `json:"shares"`
	AverageCost float64 `json:"average_cost"`
	LastPrice   float64 `json:"last_price"`
	Notes       *string `json:"notes"`
}

type StockUpdateRequest struct {
	Symbol      *string  `json:"symbol"`
	Shares      *float64 `json:"shares"`
	AverageCost *float64 `json:"average_cost"`
	LastPrice   *float64 `json:"last_price"`
	Notes       *string  `json:"notes"`
}

func (h *Handler) ListStocks(c *gin.Context) {
	page, ok := bindPagination(c)
	if !ok {
		return
	}

	userID := currentUserID(c)
	query := h.db.Model(&models.StockHolding{}).
		Joins("JOIN portfolios ON portfolios.id = stock_holdings.portfolio_id").
		Where("portfolios.user_id = ?", userID)
	if raw := c.Query("portfolio_id"); raw != "" {
		portfolioID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid portfolio_id"})
			return
		}
		query = query.Where("stock_holdings.portfolio_id = ?", portfolioID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.logger.WithError(err).Error("Failed to count stocks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stocks"})
		return
	}

	var items []models.StockHolding
	err := query.Order("stock_holdings.id DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&items).Error
	if err != nil {
		h.logger.WithError(err).Error("Failed to list stocks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stocks"})
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize})
}

func (h *Handler) CreateStock(c *gin.Context) {
	var req StockCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := h.getPortfolioOr404(c, req.PortfolioID, currentUserID(c)); !ok {
		return
	}

	holding := models.StockHolding{
		PortfolioID: req.PortfolioID,
		Symbol:      req.Symbol,
		Shares:      req.Shares,
		AverageCost: req.AverageCost,
		LastPrice:   req.LastPrice,
		Notes:       req.Notes,
	}
	if holding.LastPrice != 0 {
		now := time.Now().UTC()
		holding.LastPriceAt = &now
	}

	if err := h.db.Create(&holding).Error; err != nil {
		h.logger.WithError(err).Error("Failed to create stock holding")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create stock"})
		return
	}

	c.JSON(http.StatusCreated, holding)
}

func (h *Handler) GetStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	holding, ok := h.getStockOr404(c, id, currentUserID(c))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, holding)
}

func (h *Handler) UpdateStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	holding, ok := h.getStockOr404(c, id, currentUserID(c))
	if !ok {
		return
	}

	var req StockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Symbol != nil {
		holding.Symbol = *req.Symbol
	}
	if req.Shares != nil {
		holding.Shares = *req.Shares
	}
	if req.AverageCost != nil {
		holding.AverageCost = *req.AverageCost
	}
	if req.LastPrice != nil {
		holding.LastPrice = *req.LastPrice
		now := time.Now().UTC()
		holding.LastPriceAt = &now
	}
	if req.Notes != nil {
		holding.Notes = req.Notes
	}

	if err := h.db.Save(holding).Error; err != nil {
		h.logger.WithError(err).Error("Failed to update stock holding")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
		return
	}

	c.JSON(http.StatusOK, holding)
}

func (h *Handler) DeleteStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	holding, ok := h.getStockOr404(c, id, currentUserID(c))
	if !ok {
		return
	}

	if err := h.db.Delete(holding).Error; err != nil {
		h.logger.WithError(err).Error("Failed to delete stock holding")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete stock"})
		return
	}

	c.Status(http.StatusNoContent)
}
