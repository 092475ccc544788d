package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/doctors-portal-api/internal/metrics"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/repository"
)

// DuplicateReason is reported when a patient already holds a booking for the
// same treatment on the same date.
const DuplicateReason = "duplicate booking for this date"

// Admission is the outcome of BookingService.Admit.
type Admission struct {
	Success bool                     `json:"success"`
	Result  *repository.InsertResult `json:"result,omitempty"`
	Reason  string                   `json:"reason,omitempty"`
	// Booking is the already stored booking that caused a rejection.
	Booking *models.Booking `json:"booking,omitempty"`
}

// BookingListener is told about every stored booking.
type BookingListener interface {
	BookingAdmitted(b models.Booking)
}

type BookingService struct {
	repo      repository.BookingRepository
	listeners []BookingListener
	log       zerolog.Logger
}

func NewBookingService(repo repository.BookingRepository, log zerolog.Logger, listeners ...BookingListener) *BookingService {
	return &BookingService{repo: repo, listeners: listeners, log: log}
}

// Admit rejects b when a booking with the same treatmentName, date and
// userEmail exists, and inserts it otherwise. The slot is not part of that
// key, so two patients may still hold the same slot.
//
// The lookup and the insert are separate store calls. When the store has a
// unique index on the key, a concurrent insert that wins the race surfaces
// here as repository.ErrDuplicate and is reported as the same rejection.
func (s *BookingService) Admit(ctx context.Context, b models.Booking) (Admission, error) {
	existing, err := s.repo.FindOne(ctx, b.TreatmentName, b.Date, b.UserEmail)
	switch {
	case err == nil:
		return s.reject(b, existing, "duplicate"), nil
	case !errors.Is(err, repository.ErrNotFound):
		return Admission{}, fmt.Errorf("duplicate check: %w", err)
	}

	res, err := s.repo.Insert(ctx, b)
	if errors.Is(err, repository.ErrDuplicate) {
		existing, err := s.repo.FindOne(ctx, b.TreatmentName, b.Date, b.UserEmail)
		if err != nil {
			s.log.Warn().Err(err).
				Str("treatmentName", b.TreatmentName).
				Str("date", b.Date).
				Str("userEmail", b.UserEmail).
				Msg("lost admission race but could not load the winning booking")
		}
		return s.reject(b, existing, "duplicate_race"), nil
	}
	if err != nil {
		return Admission{}, fmt.Errorf("insert booking: %w", err)
	}

	b.ID = res.InsertedID
	metrics.BookingsAdmitted.Inc()
	s.log.Info().
		Str("bookingId", res.InsertedID.Hex()).
		Str("treatmentName", b.TreatmentName).
		Str("date", b.Date).
		Str("slot", b.Slot).
		Msg("booking admitted")
	for _, l := range s.listeners {
		l.BookingAdmitted(b)
	}
	return Admission{Success: true, Result: &res}, nil
}

func (s *BookingService) reject(b models.Booking, existing *models.Booking, metricReason string) Admission {
	metrics.BookingsRejected.WithLabelValues(metricReason).Inc()
	s.log.Info().
		Str("treatmentName", b.TreatmentName).
		Str("date", b.Date).
		Str("userEmail", b.UserEmail).
		Msg("booking rejected: " + DuplicateReason)
	return Admission{Success: false, Reason: DuplicateReason, Booking: existing}
}

// ForPatient lists every booking held by email.
func (s *BookingService) ForPatient(ctx context.Context, email string) ([]models.Booking, error) {
	bookings, err := s.repo.FindByPatient(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load bookings for patient: %w", err)
	}
	return bookings, nil
}
