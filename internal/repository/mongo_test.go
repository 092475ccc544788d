package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

func newMockStore(mt *mtest.T) (*Mongo, string) {
	return NewMongo(mt.DB, time.Second), mt.DB.Name() + "."
}

func duplicateKey() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error collection: bookings index: booking_admission_key",
	})
}

func TestMongoBookingsInsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	b := models.Booking{TreatmentName: "Cleaning", Date: "2024-01-01", Slot: "9am", UserEmail: "a@x.com"}

	mt.Run("stored", func(mt *mtest.T) {
		store, _ := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		res, err := store.Bookings.Insert(context.Background(), b)
		if err != nil {
			mt.Fatalf("Insert: %v", err)
		}
		if res.InsertedID.IsZero() {
			mt.Error("InsertedID is zero")
		}
	})

	mt.Run("duplicate key", func(mt *mtest.T) {
		store, _ := newMockStore(mt)
		mt.AddMockResponses(duplicateKey())

		_, err := store.Bookings.Insert(context.Background(), b)
		if !errors.Is(err, ErrDuplicate) {
			mt.Errorf("err = %v, want ErrDuplicate", err)
		}
	})

	mt.Run("other write failure", func(mt *mtest.T) {
		store, _ := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
			Name:    "BadValue",
		}))

		_, err := store.Bookings.Insert(context.Background(), b)
		if err == nil || errors.Is(err, ErrDuplicate) {
			mt.Errorf("err = %v, want a non-duplicate error", err)
		}
	})
}

func TestMongoBookingsFindOne(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("miss", func(mt *mtest.T) {
		store, ns := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns+BookingsCollection, mtest.FirstBatch))

		got, err := store.Bookings.FindOne(context.Background(), "Cleaning", "2024-01-01", "a@x.com")
		if !errors.Is(err, ErrNotFound) {
			mt.Errorf("err = %v, want ErrNotFound", err)
		}
		if got != nil {
			mt.Errorf("booking = %+v, want nil", got)
		}
	})

	mt.Run("hit", func(mt *mtest.T) {
		store, ns := newMockStore(mt)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns+BookingsCollection, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "treatmentName", Value: "Cleaning"},
			{Key: "date", Value: "2024-01-01"},
			{Key: "slot", Value: "9am"},
			{Key: "userEmail", Value: "a@x.com"},
		}))

		got, err := store.Bookings.FindOne(context.Background(), "Cleaning", "2024-01-01", "a@x.com")
		if err != nil {
			mt.Fatalf("FindOne: %v", err)
		}
		if got.ID != id || got.Slot != "9am" {
			mt.Errorf("booking = %+v", got)
		}
	})
}

func TestMongoBookingsFindByDate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("empty date", func(mt *mtest.T) {
		store, ns := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns+BookingsCollection, mtest.FirstBatch))

		got, err := store.Bookings.FindByDate(context.Background(), "2024-02-30")
		if err != nil {
			mt.Fatalf("FindByDate: %v", err)
		}
		if got == nil || len(got) != 0 {
			mt.Errorf("bookings = %#v, want an empty non-nil slice", got)
		}
	})

	mt.Run("two bookings", func(mt *mtest.T) {
		store, ns := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns+BookingsCollection, mtest.FirstBatch,
			bson.D{{Key: "treatmentName", Value: "Cleaning"}, {Key: "date", Value: "2024-01-01"}, {Key: "slot", Value: "9am"}},
			bson.D{{Key: "treatmentName", Value: "Surgery"}, {Key: "date", Value: "2024-01-01"}, {Key: "slot", Value: "1pm"}},
		))

		got, err := store.Bookings.FindByDate(context.Background(), "2024-01-01")
		if err != nil {
			mt.Fatalf("FindByDate: %v", err)
		}
		if len(got) != 2 || got[0].Slot != "9am" || got[1].TreatmentName != "Surgery" {
			mt.Errorf("bookings = %+v", got)
		}
	})
}

func TestMongoUsers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown user", func(mt *mtest.T) {
		store, ns := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns+UsersCollection, mtest.FirstBatch))

		if _, err := store.Users.FindByEmail(context.Background(), "ghost@x.com"); !errors.Is(err, ErrNotFound) {
			mt.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	mt.Run("set role on unknown user", func(mt *mtest.T) {
		store, _ := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		res, err := store.Users.SetRole(context.Background(), "ghost@x.com", models.RoleAdmin)
		if err != nil {
			mt.Fatalf("SetRole: %v", err)
		}
		if res.MatchedCount != 0 || res.ModifiedCount != 0 {
			mt.Errorf("result = %+v, want nothing matched", res)
		}
	})

	mt.Run("profile upsert duplicate key", func(mt *mtest.T) {
		store, _ := newMockStore(mt)
		mt.AddMockResponses(duplicateKey())

		_, err := store.Users.UpsertProfile(context.Background(), models.User{Email: "a@x.com", Name: "Ann"})
		if !errors.Is(err, ErrDuplicate) {
			mt.Errorf("err = %v, want ErrDuplicate", err)
		}
	})
}

func TestMongoDoctorsDeleteByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	tests := []struct {
		name string
		n    int32
	}{
		{"nothing deleted", 0},
		{"one deleted", 1},
	}
	for _, tt := range tests {
		mt.Run(tt.name, func(mt *mtest.T) {
			store, _ := newMockStore(mt)
			mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: tt.n}))

			res, err := store.Doctors.DeleteByEmail(context.Background(), "who@x.com")
			if err != nil {
				mt.Fatalf("DeleteByEmail: %v", err)
			}
			if res.DeletedCount != int64(tt.n) {
				mt.Errorf("DeletedCount = %d, want %d", res.DeletedCount, tt.n)
			}
		})
	}
}

func TestMongoDoctorsInsertDuplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email", func(mt *mtest.T) {
		store, _ := newMockStore(mt)
		mt.AddMockResponses(duplicateKey())

		_, err := store.Doctors.Insert(context.Background(), models.Doctor{Name: "Dr. Who", Email: "who@x.com", Specialty: "Oral Surgery"})
		if !errors.Is(err, ErrDuplicate) {
			mt.Errorf("err = %v, want ErrDuplicate", err)
		}
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("all collections", func(mt *mtest.T) {
		store, _ := newMockStore(mt)
		for i := 0; i < 4; i++ {
			mt.AddMockResponses(mtest.CreateSuccessResponse())
		}
		if err := store.EnsureIndexes(context.Background()); err != nil {
			mt.Errorf("EnsureIndexes: %v", err)
		}
	})

	mt.Run("failure", func(mt *mtest.T) {
		store, _ := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Message: "index options conflict",
			Name:    "IndexOptionsConflict",
		}))
		if err := store.EnsureIndexes(context.Background()); err == nil {
			mt.Error("EnsureIndexes succeeded on a server error")
		}
	})
}
