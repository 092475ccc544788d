package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListServices returns the catalog. ?fields=name returns names only.
func (h *Handler) ListServices(c *gin.Context) {
	if c.Query("fields") == "name" {
		names, err := h.Catalog.Names(c.Request.Context())
		if err != nil {
			h.Log.Error().Err(err).Msg("list service names")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve services"})
			return
		}
		c.JSON(http.StatusOK, names)
		return
	}

	services, err := h.Catalog.List(c.Request.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("list services")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve services"})
		return
	}
	c.JSON(http.StatusOK, services)
}

// Available returns every service with the slots still open on ?date=.
func (h *Handler) Available(c *gin.Context) {
	services, err := h.Availability.ForDate(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.Log.Error().Err(err).Msg("compute availability")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute availability"})
		return
	}
	c.JSON(http.StatusOK, services)
}
