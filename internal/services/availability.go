package services

import (
	"context"
	"fmt"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/repository"
)

// Available returns a copy of services where each Slots list keeps only the
// slots not taken by a booking for that service. bookings must already be
// restricted to a single date. Slot order is preserved.
func Available(services []models.Service, bookings []models.Booking) []models.Service {
	booked := make(map[string]map[string]struct{})
	for _, b := range bookings {
		taken, ok := booked[b.TreatmentName]
		if !ok {
			taken = make(map[string]struct{})
			booked[b.TreatmentName] = taken
		}
		taken[b.Slot] = struct{}{}
	}

	out := make([]models.Service, 0, len(services))
	for _, s := range services {
		taken := booked[s.Name]
		slots := make([]string, 0, len(s.Slots))
		for _, slot := range s.Slots {
			if _, ok := taken[slot]; !ok {
				slots = append(slots, slot)
			}
		}
		s.Slots = slots
		out = append(out, s)
	}
	return out
}

// AvailabilityService loads the catalog and the bookings of a date and runs
// Available over them.
type AvailabilityService struct {
	catalog  *Catalog
	bookings repository.BookingRepository
}

func NewAvailabilityService(catalog *Catalog, bookings repository.BookingRepository) *AvailabilityService {
	return &AvailabilityService{catalog: catalog, bookings: bookings}
}

// ForDate does not validate date: an unknown date simply has no bookings, so
// every service comes back fully available.
func (s *AvailabilityService) ForDate(ctx context.Context, date string) ([]models.Service, error) {
	services, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.FindByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load bookings for %q: %w", date, err)
	}
	return Available(services, bookings), nil
}
