package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

const (
	ServicesCollection = "services"
	BookingsCollection = "bookings"
	UsersCollection    = "users"
	DoctorsCollection  = "doctors"
)

// Mongo bundles the four collection repositories over one database handle.
type Mongo struct {
	Services *MongoServices
	Bookings *MongoBookings
	Users    *MongoUsers
	Doctors  *MongoDoctors

	db      *mongo.Database
	timeout time.Duration
}

func NewMongo(db *mongo.Database, timeout time.Duration) *Mongo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	base := func(name string) collection {
		return collection{coll: db.Collection(name), timeout: timeout}
	}
	return &Mongo{
		Services: &MongoServices{base(ServicesCollection)},
		Bookings: &MongoBookings{base(BookingsCollection)},
		Users:    &MongoUsers{base(UsersCollection)},
		Doctors:  &MongoDoctors{base(DoctorsCollection)},
		db:       db,
		timeout:  timeout,
	}
}

// EnsureIndexes creates the unique keys the handlers rely on. The bookings
// index closes the window between the duplicate lookup and the insert.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		ServicesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		BookingsCollection: {
			{
				Keys: bson.D{
					{Key: "treatmentName", Value: 1},
					{Key: "date", Value: 1},
					{Key: "userEmail", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("booking_admission_key"),
			},
			{Keys: bson.D{{Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "userEmail", Value: 1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		DoctorsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, idx := range indexes {
		if _, err := m.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

type collection struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func (c collection) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.timeout)
}

func findAll[T any](ctx context.Context, c collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

func findOne[T any](ctx context.Context, c collection, filter interface{}) (*T, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	var doc T
	err := c.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one in %s: %w", c.coll.Name(), err)
	}
	return &doc, nil
}

func (c collection) insert(ctx context.Context, doc interface{}) (InsertResult, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return InsertResult{}, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return InsertResult{}, fmt.Errorf("insert into %s: %w", c.coll.Name(), err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return InsertResult{InsertedID: id}, nil
}

func (c collection) update(ctx context.Context, filter, update interface{}, upsert bool) (UpdateResult, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	res, err := c.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(upsert))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return UpdateResult{}, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return UpdateResult{}, fmt.Errorf("update %s: %w", c.coll.Name(), err)
	}
	return UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}

// --- services ---

type MongoServices struct{ collection }

func (r *MongoServices) List(ctx context.Context) ([]models.Service, error) {
	return findAll[models.Service](ctx, r.collection, bson.M{})
}

func (r *MongoServices) ListNames(ctx context.Context) ([]models.Service, error) {
	opts := options.Find().SetProjection(bson.M{"name": 1})
	return findAll[models.Service](ctx, r.collection, bson.M{}, opts)
}

func (r *MongoServices) UpsertByName(ctx context.Context, s models.Service) (UpdateResult, error) {
	return r.update(ctx, bson.M{"name": s.Name}, bson.M{"$set": bson.M{"name": s.Name, "slots": s.Slots}}, true)
}

// --- bookings ---

type MongoBookings struct{ collection }

func (r *MongoBookings) FindByDate(ctx context.Context, date string) ([]models.Booking, error) {
	return findAll[models.Booking](ctx, r.collection, bson.M{"date": date})
}

func (r *MongoBookings) FindByPatient(ctx context.Context, email string) ([]models.Booking, error) {
	return findAll[models.Booking](ctx, r.collection, bson.M{"userEmail": email})
}

func (r *MongoBookings) FindOne(ctx context.Context, treatmentName, date, userEmail string) (*models.Booking, error) {
	return findOne[models.Booking](ctx, r.collection, bson.M{
		"treatmentName": treatmentName,
		"date":          date,
		"userEmail":     userEmail,
	})
}

func (r *MongoBookings) Insert(ctx context.Context, b models.Booking) (InsertResult, error) {
	b.ID = primitive.NewObjectID()
	return r.insert(ctx, b)
}

// --- users ---

type MongoUsers struct{ collection }

func (r *MongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.collection, bson.M{"email": email})
}

func (r *MongoUsers) UpsertProfile(ctx context.Context, u models.User) (UpdateResult, error) {
	return r.update(ctx, bson.M{"email": u.Email}, bson.M{"$set": bson.M(profileFields(u))}, true)
}

func (r *MongoUsers) SetRole(ctx context.Context, email, role string) (UpdateResult, error) {
	return r.update(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"role": role}}, false)
}

func (r *MongoUsers) List(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, r.collection, bson.M{})
}

// --- doctors ---

type MongoDoctors struct{ collection }

func (r *MongoDoctors) Insert(ctx context.Context, d models.Doctor) (InsertResult, error) {
	d.ID = primitive.NewObjectID()
	return r.insert(ctx, d)
}

func (r *MongoDoctors) List(ctx context.Context) ([]models.Doctor, error) {
	return findAll[models.Doctor](ctx, r.collection, bson.M{})
}

func (r *MongoDoctors) DeleteByEmail(ctx context.Context, email string) (DeleteResult, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete from %s: %w", r.coll.Name(), err)
	}
	return DeleteResult{DeletedCount: res.DeletedCount}, nil
}

var (
	_ ServiceRepository = (*MongoServices)(nil)
	_ BookingRepository = (*MongoBookings)(nil)
	_ UserRepository    = (*MongoUsers)(nil)
	_ DoctorRepository  = (*MongoDoctors)(nil)
)
