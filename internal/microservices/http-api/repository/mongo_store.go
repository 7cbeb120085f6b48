package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"cinerate/internal/microservices/http-api/models"
)

const (
	usersCollection    = "users"
	ratingsCollection  = "ratings"
	countersCollection = "id_counters"
)

// MongoStore keeps users, ratings and id counters in three collections.
// Multi-document transactions need a replica set, so Atomic runs fn directly.
type MongoStore struct {
	db       *mongo.Database
	users    *mongoUserRepository
	ratings  *mongoRatingRepository
	counters *mongoCounterRepository
}

// NewMongoStore wraps db and creates the unique indexes the services rely on.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{
		db:       db,
		users:    &mongoUserRepository{col: db.Collection(usersCollection)},
		ratings:  &mongoRatingRepository{col: db.Collection(ratingsCollection)},
		counters: &mongoCounterRepository{col: db.Collection(countersCollection)},
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("mongo users indexes: %w", err)
	}
	_, err = s.ratings.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ratingId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "mediaId", Value: 1}, {Key: "ratingId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo ratings indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Users() UserRepository       { return s.users }
func (s *MongoStore) Ratings() RatingRepository   { return s.ratings }
func (s *MongoStore) Counters() CounterRepository { return s.counters }

func (s *MongoStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return fn(s)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func translateMongoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

type mongoUserRepository struct {
	col *mongo.Collection
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if _, err := r.col.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("mongo insert user: %w", translateMongoError(err))
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&user); err != nil {
		return nil, translateMongoError(err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translateMongoError(err)
	}
	return &user, nil
}

func (r *mongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "userId", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list users: %w", err)
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongo decode users: %w", err)
	}
	return users, nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := r.col.FindOneAndDelete(ctx, bson.M{"userId": userID}).Decode(&user); err != nil {
		return nil, translateMongoError(err)
	}
	return &user, nil
}

func (r *mongoUserRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

type mongoRatingRepository struct {
	col *mongo.Collection
}

func (r *mongoRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if _, err := r.col.InsertOne(ctx, rating); err != nil {
		return fmt.Errorf("mongo insert rating: %w", translateMongoError(err))
	}
	return nil
}

func (r *mongoRatingRepository) FindByID(ctx context.Context, ratingID int64) (*models.Rating, error) {
	var rating models.Rating
	if err := r.col.FindOne(ctx, bson.M{"ratingId": ratingID}).Decode(&rating); err != nil {
		return nil, translateMongoError(err)
	}
	return &rating, nil
}

func (r *mongoRatingRepository) ListByMedia(ctx context.Context, mediaID string) ([]models.Rating, error) {
	return r.find(ctx, bson.M{"mediaId": mediaID})
}

func (r *mongoRatingRepository) ListByUser(ctx context.Context, userID int64) ([]models.Rating, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *mongoRatingRepository) find(ctx context.Context, filter bson.M) ([]models.Rating, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ratingId", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find ratings: %w", err)
	}
	defer cur.Close(ctx)

	ratings := []models.Rating{}
	if err := cur.All(ctx, &ratings); err != nil {
		return nil, fmt.Errorf("mongo decode ratings: %w", err)
	}
	return ratings, nil
}

func (r *mongoRatingRepository) Delete(ctx context.Context, ratingID int64) (*models.Rating, error) {
	var rating models.Rating
	if err := r.col.FindOneAndDelete(ctx, bson.M{"ratingId": ratingID}).Decode(&rating); err != nil {
		return nil, translateMongoError(err)
	}
	return &rating, nil
}

func (r *mongoRatingRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, fmt.Errorf("mongo delete ratings by user: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoRatingRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

type mongoCounterRepository struct {
	col *mongo.Collection
}

// Increment relies on $inc being atomic on a single document. Two upserts of
// a missing counter can race on _id; the loser retries and finds the document.
func (r *mongoCounterRepository) Increment(ctx context.Context, kind string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var counter models.IDCounter
		err := r.col.FindOneAndUpdate(ctx,
			bson.M{"_id": kind},
			bson.M{"$inc": bson.M{"value": int64(1)}},
			opts,
		).Decode(&counter)
		if err == nil {
			return counter.Value, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("mongo increment counter %q: %w", kind, err)
		}
		lastErr = err
	}
	return 0, fmt.Errorf("mongo increment counter %q: %w", kind, lastErr)
}
