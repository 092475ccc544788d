package handlers

import (
	"github.com/rs/zerolog"

	"github.com/harentsoaR/doctors-portal-api/internal/repository"
	"github.com/harentsoaR/doctors-portal-api/internal/services"
	"github.com/harentsoaR/doctors-portal-api/internal/utils"
)

// Handler carries every dependency the routes need. Nothing is read from
// package state.
type Handler struct {
	Catalog      *services.Catalog
	Availability *services.AvailabilityService
	Bookings     *services.BookingService
	Users        repository.UserRepository
	Doctors      repository.DoctorRepository
	Tokens       *utils.TokenManager
	Log          zerolog.Logger
}

func NewHandler(
	catalog *services.Catalog,
	availability *services.AvailabilityService,
	bookings *services.BookingService,
	users repository.UserRepository,
	doctors repository.DoctorRepository,
	tokens *utils.TokenManager,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		Catalog:      catalog,
		Availability: availability,
		Bookings:     bookings,
		Users:        users,
		Doctors:      doctors,
		Tokens:       tokens,
		Log:          log,
	}
}

// emailParam is bound from the :email path segment.
type emailParam struct {
	Email string `uri:"email" binding:"required,email"`
}
