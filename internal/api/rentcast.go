package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PreviewRentData fetches details, estimate and comps for an arbitrary
// address without persisting anything, so the raw provider payloads
// can be inspected before attaching them to a property.
func (h *Handler) PreviewRentData(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	details, estimate, comps, err := h.enricher.Preview(address)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"details":  details,
		"estimate": estimate,
		"comps":    comps,
	})
}
