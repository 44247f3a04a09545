package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"atlas/server/internal/models"
	"atlas/server/internal/rental"
)

type PropertyCreateRequest struct {
	PortfolioID              int64      `json:"portfolio_id" binding:"required"`
	Address                  string     `json:"address" binding:"required"`
	City                     string     `json:"city" binding:"required"`
	State                    string     `json:"state" binding:"required"`
	Zip                      string     `json:"zip" binding:"required"`
	PurchasePrice            float64    `json:"purchase_price"`
	PurchaseDate             *time.Time `json:"purchase_date"`
	ValuationMethod          string     `json:"valuation_method"`
	LastValuation            float64    `json:"last_valuation"`
	MonthlyRent              float64    `json:"monthly_rent"`
	MonthlyOperatingExpenses float64    `json:"monthly_operating_expenses"`
	MonthlyMortgage          float64    `json:"monthly_mortgage"`
	MortgageBalance          float64    `json:"mortgage_balance"`
}

// PropertyUpdateRequest uses pointers so absent fields are left as-is.
type PropertyUpdateRequest struct {
	Address                  *string    `json:"address"`
	City                     *string    `json:"city"`
	State                    *string    `json:"state"`
	Zip                      *string    `json:"zip"`
	PurchasePrice            *float64   `json:"purchase_price"`
	PurchaseDate             *time.Time `json:"purchase_date"`
	ValuationMethod          *string    `json:"valuation_method"`
	LastValuation            *float64   `json:"last_valuation"`
	MonthlyRent              *float64   `json:"monthly_rent"`
	MonthlyOperatingExpenses *float64   `json:"monthly_operating_expenses"`
	MonthlyMortgage          *float64   `json:"monthly_mortgage"`
	MortgageBalance          *float64   `json:"mortgage_balance"`
}

func (h *Handler) ListProperties(c *gin.Context) {
	page, ok := bindPagination(c)
	if !ok {
		return
	}

	userID := currentUserID(c)
	query := h.db.Model(&models.Property{}).
		Joins("JOIN portfolios ON portfolios.id = properties.portfolio_id").
		Where("portfolios.user_id = ?", userID)
	if raw := c.Query("portfolio_id"); raw != "" {
		portfolioID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid portfolio_id"})
			return
		}
		query = query.Where("properties.portfolio_id = ?", portfolioID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.logger.WithError(err).Error("Failed to count properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list properties"})
		return
	}

	var items []models.Property
	err := query.Order("properties.id DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&items).Error
	if err != nil {
		h.logger.WithError(err).Error("Failed to list properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list properties"})
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize})
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var req PropertyCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := h.getPortfolioOr404(c, req.PortfolioID, currentUserID(c)); !ok {
		return
	}

	property := models.Property{
		PortfolioID:              req.PortfolioID,
		Address:                  req.Address,
		City:                     req.City,
		State:                    req.State,
		Zip:                      req.Zip,
		PurchasePrice:            req.PurchasePrice,
		PurchaseDate:             req.PurchaseDate,
		ValuationMethod:          req.ValuationMethod,
		LastValuation:            req.LastValuation,
		MonthlyRent:              req.MonthlyRent,
		MonthlyOperatingExpenses: req.MonthlyOperatingExpenses,
		MonthlyMortgage:          req.MonthlyMortgage,
		MortgageBalance:          req.MortgageBalance,
	}
	if property.ValuationMethod == "" {
		property.ValuationMethod = "manual"
	}

	if err := h.db.Create(&property).Error; err != nil {
		h.logger.WithError(err).Error("Failed to create property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	c.JSON(http.StatusCreated, property)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	property, ok := h.getPropertyOr404(c, id, currentUserID(c))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	property, ok := h.getPropertyOr404(c, id, currentUserID(c))
	if !ok {
		return
	}

	var req PropertyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applyPropertyUpdate(property, &req)
	if err := h.db.Save(property).Error; err != nil {
		h.logger.WithError(err).Error("Failed to update property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}

	c.JSON(http.StatusOK, property)
}

func applyPropertyUpdate(property *models.Property, req *PropertyUpdateRequest) {
	if req.Address != nil {
		property.Address = *req.Address
	}
	if req.City != nil {
		property.City = *req.City
	}
	if req.State != nil {
		property.State = *req.State
	}
	if req.Zip != nil {
		property.Zip = *req.Zip
	}
	if req.PurchasePrice != nil {
		property.PurchasePrice = *req.PurchasePrice
	}
	if req.PurchaseDate != nil {
		property.PurchaseDate = req.PurchaseDate
	}
	if req.ValuationMethod != nil {
		property.ValuationMethod = *req.ValuationMethod
	}
	if req.LastValuation != nil {
		property.LastValuation = *req.LastValuation
	}
	if req.MonthlyRent != nil {
		property.MonthlyRent = *req.MonthlyRent
	}
	if req.MonthlyOperatingExpenses != nil {
		property.MonthlyOperatingExpenses = *req.MonthlyOperatingExpenses
	}
	if req.MonthlyMortgage != nil {
		property.MonthlyMortgage = *req.MonthlyMortgage
	}
	if req.MortgageBalance != nil {
		property.MortgageBalance = *req.MortgageBalance
	}
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	property, ok := h.getPropertyOr404(c, id, currentUserID(c))
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.RentEstimate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.RentComp{}).Error; err != nil {
			return err
		}
		return tx.Delete(property).Error
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RefreshPropertyRentData triggers the enrichment pipeline for one
// property. Upstream provider failures map to 502; the property and
// its derived rows are untouched in that case.
func (h *Handler) RefreshPropertyRentData(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	property, ok := h.getPropertyOr404(c, id, currentUserID(c))
	if !ok {
		return
	}

	if err := h.enricher.Refresh(property); err != nil {
		if errors.Is(err, rental.ErrUpstream) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to persist enrichment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh property"})
		return
	}

	c.JSON(http.StatusOK, property)
}
