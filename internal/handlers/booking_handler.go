package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctors-portal-api/internal/middleware"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

func (h *Handler) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admission, err := h.Bookings.Admit(c.Request.Context(), req.Booking())
	if err != nil {
		h.Log.Error().Err(err).Msg("admit booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}
	if !admission.Success {
		c.JSON(http.StatusConflict, admission)
		return
	}
	c.JSON(http.StatusCreated, admission)
}

// MyBookings lists the bookings of ?patient=, which must be the caller.
func (h *Handler) MyBookings(c *gin.Context) {
	patient := c.Query("patient")
	if patient == "" || patient != middleware.Email(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
		return
	}

	bookings, err := h.Bookings.ForPatient(c.Request.Context(), patient)
	if err != nil {
		h.Log.Error().Err(err).Msg("list patient bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bookings"})
		return
	}
	c.JSON(http.StatusOK, bookings)
}
