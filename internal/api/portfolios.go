package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"atlas/server/internal/models"
)

type PortfolioRequest struct {
	Name string `json:"name" binding:"required"`
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) ListPortfolios(c *gin.Context) {
	page, ok := bindPagination(c)
	if !ok {
		return
	}

	userID := currentUserID(c)
	query := h.db.Model(&models.Portfolio{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.logger.WithError(err).Error("Failed to count portfolios")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list portfolios"})
		return
	}

	var items []models.Portfolio
	err := query.Order("id DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&items).Error
	if err != nil {
		h.logger.WithError(err).Error("Failed to list portfolios")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list portfolios"})
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: items, Total: total, Page: page.Page, PageSize: page.PageSize})
}

func (h *Handler) CreatePortfolio(c *gin.Context) {
	var req PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	portfolio := models.Portfolio{UserID: currentUserID(c), Name: req.Name}
	if err := h.db.Create(&portfolio).Error; err != nil {
		h.logger.WithError(err).Error("Failed to create portfolio")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create portfolio"})
		return
	}

	c.JSON(http.StatusCreated, portfolio)
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	portfolio, ok := h.getPortfolioOr404(c, id, currentUserID(c))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, portfolio)
}

func (h *Handler) UpdatePortfolio(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	portfolio, ok := h.getPortfolioOr404(c, id, currentUserID(c))
	if !ok {
		return
	}

	var req PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	portfolio.Name = req.Name
	if err := h.db.Save(portfolio).Error; err != nil {
		h.logger.WithError(err).Error("Failed to update portfolio")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update portfolio"})
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

func (h *Handler) DeletePortfolio(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	portfolio, ok := h.getPortfolioOr404(c, id, currentUserID(c))
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var propertyIDs []int64
		if err := tx.Model(&models.Property{}).Where("portfolio_id = ?", id).Pluck("id", &propertyIDs).Error; err != nil {
			return err
		}
		if len(propertyIDs) > 0 {
			if err := tx.Where("property_id IN ?", propertyIDs).Delete(&models.RentEstimate{}).Error; err != nil {
				return err
			}
			if err := tx.Where("property_id IN ?", propertyIDs).Delete(&models.RentComp{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("portfolio_id = ?", id).Delete(&models.Property{}).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", id).Delete(&models.StockHolding{}).Error; err != nil {
			return err
		}
		return tx.Delete(portfolio).Error
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete portfolio")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete portfolio"})
		return
	}

	c.Status(http.StatusNoContent)
}
