// Package repository is the document store gateway: one interface per
// collection, a MongoDB implementation and an in-memory one under memory/.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

var (
	// ErrNotFound is returned by single-document lookups that match nothing.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("repository: duplicate key")
)

// UpdateResult mirrors the store's update acknowledgement.
type UpdateResult struct {
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}

type InsertResult struct {
	InsertedID primitive.ObjectID `json:"insertedId"`
}

type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

type ServiceRepository interface {
	List(ctx context.Context) ([]models.Service, error)
	// ListNames returns services with only the name populated.
	ListNames(ctx context.Context) ([]models.Service, error)
	UpsertByName(ctx context.Context, s models.Service) (UpdateResult, error)
}

type BookingRepository interface {
	FindByDate(ctx context.Context, date string) ([]models.Booking, error)
	FindByPatient(ctx context.Context, email string) ([]models.Booking, error)
	// FindOne matches treatmentName, date and userEmail exactly. Slot is not
	// part of the key.
	FindOne(ctx context.Context, treatmentName, date, userEmail string) (*models.Booking, error)
	Insert(ctx context.Context, b models.Booking) (InsertResult, error)
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// UpsertProfile sets the non-empty profile fields of u on the user keyed
	// by u.Email, creating it if needed. Role is never written here.
	UpsertProfile(ctx context.Context, u models.User) (UpdateResult, error)
	SetRole(ctx context.Context, email, role string) (UpdateResult, error)
	List(ctx context.Context) ([]models.User, error)
}

type DoctorRepository interface {
	Insert(ctx context.Context, d models.Doctor) (InsertResult, error)
	List(ctx context.Context) ([]models.Doctor, error)
	DeleteByEmail(ctx context.Context, email string) (DeleteResult, error)
}

// profileFields is the $set document for a profile upsert.
func profileFields(u models.User) map[string]interface{} {
	set := map[string]interface{}{"email": u.Email}
	if u.Name != "" {
		set["name"] = u.Name
	}
	if u.Phone != "" {
		set["phone"] = u.Phone
	}
	if u.Photo != "" {
		set["photo"] = u.Photo
	}
	return set
}
