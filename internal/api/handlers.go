package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"atlas/server/internal/auth"
	"atlas/server/internal/enrichment"
	"atlas/server/internal/models"
)

type Handler struct {
	db       *gorm.DB
	logger   *logrus.Logger
	tokens   *auth.TokenIssuer
	enricher *enrichment.Enricher
}

func NewHandler(db *gorm.DB, tokens *auth.TokenIssuer, enricher *enrichment.Enricher, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:       db,
		logger:   logger,
		tokens:   tokens,
		enricher: enricher,
	}
}

// Pagination carries the page/page_size query pair used by every list
// endpoint. Defaults: page 1, page_size 20, capped at 100.
type Pagination struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type ListResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func bindPagination(c *gin.Context) (Pagination, bool) {
	var page Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters"})
		return page, false
	}
	return page, true
}

// getPortfolioOr404 loads a portfolio and verifies ownership; any
// mismatch is reported as not-found to avoid leaking existence.
func (h *Handler) getPortfolioOr404(c *gin.Context, portfolioID, userID int64) (*models.Portfolio, bool) {
	var portfolio models.Portfolio
	err := h.db.First(&portfolio, portfolioID).Error
	if err != nil || portfolio.UserID != userID {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			h.logger.WithError(err).Error("Failed to load portfolio")
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Portfolio not found"})
		return nil, false
	}
	return &portfolio, true
}

func (h *Handler) getPropertyOr404(c *gin.Context, propertyID, userID int64) (*models.Property, bool) {
	var property models.Property
	err := h.db.
		Joins("JOIN portfolios ON portfolios.id = properties.portfolio_id").
		Where("properties.id = ? AND portfolios.user_id = ?", propertyID, userID).
		First(&property).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.logger.WithError(err).Error("Failed to load property")
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return nil, false
	}
	return &property, true
}

func (h *Handler) getStockOr404(c *gin.Context, stockID, userID int64) (*models.StockHolding, bool) {
	var holding models.StockHolding
	err := h.db.
		Joins("JOIN portfolios ON portfolios.id = stock_holdings.portfolio_id").
		Where("stock_holdings.id = ? AND portfolios.user_id = ?", stockID, userID).
		First(&holding).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.logger.WithError(err).Error("Failed to load stock holding")
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock not found"})
		return nil, false
	}
	return &holding, true
}
