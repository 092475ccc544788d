package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/repository"
)

func TestBookingsUniqueKey(t *testing.T) {
	ctx := context.Background()
	s := New()
	b := models.Booking{TreatmentName: "Cleaning", Date: "2024-01-01", Slot: "9am", UserEmail: "a@x.com"}
	if _, err := s.Bookings.Insert(ctx, b); err != nil {
		t.Fatal(err)
	}

	b.Slot = "10am"
	if _, err := s.Bookings.Insert(ctx, b); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("second insert err = %v, want ErrDuplicate", err)
	}

	if _, err := s.Bookings.FindOne(ctx, "Cleaning", "2024-01-02", "a@x.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("FindOne on other date err = %v, want ErrNotFound", err)
	}
}

func TestUsersUpsertAndRole(t *testing.T) {
	ctx := context.Background()
	s := New()

	res, err := s.Users.UpsertProfile(ctx, models.User{Email: "a@x.com", Name: "Ann"})
	if err != nil {
		t.Fatal(err)
	}
	if res.UpsertedCount != 1 {
		t.Errorf("first upsert = %+v, want an insert", res)
	}

	res, _ = s.Users.UpsertProfile(ctx, models.User{Email: "a@x.com", Phone: "+1555"})
	if res.MatchedCount != 1 || res.ModifiedCount != 1 {
		t.Errorf("second upsert = %+v, want a modification", res)
	}
	u, _ := s.Users.FindByEmail(ctx, "a@x.com")
	if u.Name != "Ann" || u.Phone != "+1555" || u.Role != "" {
		t.Errorf("user = %+v, want name kept, phone set and no role", u)
	}

	if res, _ := s.Users.SetRole(ctx, "nobody@x.com", models.RoleAdmin); res.MatchedCount != 0 {
		t.Errorf("SetRole on unknown user matched %d", res.MatchedCount)
	}
	s.Users.SetRole(ctx, "a@x.com", models.RoleAdmin)
	u, _ = s.Users.FindByEmail(ctx, "a@x.com")
	if !u.IsAdmin() {
		t.Errorf("user role = %q, want admin", u.Role)
	}
}

func TestDoctorsInsertDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	d := models.Doctor{Name: "Dr. Who", Email: "who@x.com", Specialty: "Oral Surgery"}
	if _, err := s.Doctors.Insert(ctx, d); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Doctors.Insert(ctx, d); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("duplicate insert err = %v", err)
	}
	if res, _ := s.Doctors.DeleteByEmail(ctx, "who@x.com"); res.DeletedCount != 1 {
		t.Errorf("DeletedCount = %d, want 1", res.DeletedCount)
	}
	if res, _ := s.Doctors.DeleteByEmail(ctx, "who@x.com"); res.DeletedCount != 0 {
		t.Errorf("second DeletedCount = %d, want 0", res.DeletedCount)
	}
}
