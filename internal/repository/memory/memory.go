// Package memory is an in-process implementation of the repository
// interfaces. It enforces the same unique keys as the MongoDB indexes.
package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/repository"
)

type Store struct {
	Services *Services
	Bookings *Bookings
	Users    *Users
	Doctors  *Doctors
}

func New() *Store {
	return &Store{
		Services: &Services{},
		Bookings: &Bookings{},
		Users:    &Users{},
		Doctors:  &Doctors{},
	}
}

type Services struct {
	mu   sync.RWMutex
	docs []models.Service
}

func (r *Services) List(_ context.Context) ([]models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Service, 0, len(r.docs))
	for _, s := range r.docs {
		s.Slots = append([]string(nil), s.Slots...)
		out = append(out, s)
	}
	return out, nil
}

func (r *Services) ListNames(_ context.Context) ([]models.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Service, 0, len(r.docs))
	for _, s := range r.docs {
		out = append(out, models.Service{ID: s.ID, Name: s.Name})
	}
	return out, nil
}

func (r *Services) UpsertByName(_ context.Context, s models.Service) (repository.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.docs {
		if r.docs[i].Name == s.Name {
			r.docs[i].Slots = append([]string(nil), s.Slots...)
			return repository.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	s.ID = primitive.NewObjectID()
	s.Slots = append([]string(nil), s.Slots...)
	r.docs = append(r.docs, s)
	return repository.UpdateResult{UpsertedCount: 1, UpsertedID: s.ID}, nil
}

type Bookings struct {
	mu   sync.RWMutex
	docs []models.Booking
}

func (r *Bookings) FindByDate(_ context.Context, date string) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool { return b.Date == date }), nil
}

func (r *Bookings) FindByPatient(_ context.Context, email string) ([]models.Booking, error) {
	return r.filter(func(b models.Booking) bool { return b.UserEmail == email }), nil
}

func (r *Bookings) FindOne(_ context.Context, treatmentName, date, userEmail string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.lookup(treatmentName, date, userEmail); ok {
		return &b, nil
	}
	return nil, repository.ErrNotFound
}

func (r *Bookings) Insert(_ context.Context, b models.Booking) (repository.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lookup(b.TreatmentName, b.Date, b.UserEmail); ok {
		return repository.InsertResult{}, repository.ErrDuplicate
	}
	b.ID = primitive.NewObjectID()
	r.docs = append(r.docs, b)
	return repository.InsertResult{InsertedID: b.ID}, nil
}

// Len returns the number of stored bookings.
func (r *Bookings) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

func (r *Bookings) lookup(treatmentName, date, userEmail string) (models.Booking, bool) {
	for _, b := range r.docs {
		if b.TreatmentName == treatmentName && b.Date == date && b.UserEmail == userEmail {
			return b, true
		}
	}
	return models.Booking{}, false
}

func (r *Bookings) filter(keep func(models.Booking) bool) []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Booking, 0)
	for _, b := range r.docs {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

type Users struct {
	mu   sync.RWMutex
	docs []models.User
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(email); i >= 0 {
		u := r.docs[i]
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *Users) UpsertProfile(_ context.Context, u models.User) (repository.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(u.Email); i >= 0 {
		cur := &r.docs[i]
		before := *cur
		if u.Name != "" {
			cur.Name = u.Name
		}
		if u.Phone != "" {
			cur.Phone = u.Phone
		}
		if u.Photo != "" {
			cur.Photo = u.Photo
		}
		res := repository.UpdateResult{MatchedCount: 1}
		if *cur != before {
			res.ModifiedCount = 1
		}
		return res, nil
	}
	doc := models.User{
		ID:    primitive.NewObjectID(),
		Email: u.Email,
		Name:  u.Name,
		Phone: u.Phone,
		Photo: u.Photo,
	}
	r.docs = append(r.docs, doc)
	return repository.UpdateResult{UpsertedCount: 1, UpsertedID: doc.ID}, nil
}

func (r *Users) SetRole(_ context.Context, email, role string) (repository.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(email)
	if i < 0 {
		return repository.UpdateResult{}, nil
	}
	res := repository.UpdateResult{MatchedCount: 1}
	if r.docs[i].Role != role {
		r.docs[i].Role = role
		res.ModifiedCount = 1
	}
	return res, nil
}

func (r *Users) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(make([]models.User, 0, len(r.docs)), r.docs...), nil
}

func (r *Users) index(email string) int {
	for i := range r.docs {
		if r.docs[i].Email == email {
			return i
		}
	}
	return -1
}

type Doctors struct {
	mu   sync.RWMutex
	docs []models.Doctor
}

func (r *Doctors) Insert(_ context.Context, d models.Doctor) (repository.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cur := range r.docs {
		if cur.Email == d.Email {
			return repository.InsertResult{}, repository.ErrDuplicate
		}
	}
	d.ID = primitive.NewObjectID()
	r.docs = append(r.docs, d)
	return repository.InsertResult{InsertedID: d.ID}, nil
}

func (r *Doctors) List(_ context.Context) ([]models.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(make([]models.Doctor, 0, len(r.docs)), r.docs...), nil
}

func (r *Doctors) DeleteByEmail(_ context.Context, email string) (repository.DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.docs {
		if cur.Email == email {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return repository.DeleteResult{DeletedCount: 1}, nil
		}
	}
	return repository.DeleteResult{}, nil
}

var (
	_ repository.ServiceRepository = (*Services)(nil)
	_ repository.BookingRepository = (*Bookings)(nil)
	_ repository.UserRepository    = (*Users)(nil)
	_ repository.DoctorRepository  = (*Doctors)(nil)
)
