// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielhkuo/lunchpick/models"
)

// Collection names
const (
	collCandidates = "candidates"
	collDirectory  = "restaurant_directory"
	collVotes      = "votes"
	collProfiles   = "user_profiles"
	collOrders     = "orders"
	collClosures   = "order_closures"
)

// MongoStore implements Store on a MongoDB database
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects, pings and ensures indexes
func OpenMongo(ctx context.Context, uri, name string) (*MongoStore, error) {
	if name == "" {
		return nil, errors.New("database name is required for mongo")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	s := NewMongoStore(client, name)
	if err := s.EnsureIndexes(connectCtx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStore wraps a connected client. It does not create indexes.
func NewMongoStore(client *mongo.Client, name string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(name)}
}

// EnsureIndexes creates the unique and lookup indexes. Safe to call repeatedly.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	caseInsensitive := &options.Collation{Locale: "en", Strength: 2}

	indexes := map[string][]mongo.IndexModel{
		collCandidates: {
			{Keys: bson.D{{Key: "day", Value: 1}, {Key: "menu_url", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collDirectory: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)},
		},
		collVotes: {
			{Keys: bson.D{{Key: "day", Value: 1}}},
			{Keys: bson.D{{Key: "voter_id", Value: 1}, {Key: "candidate_id", Value: 1}, {Key: "day", Value: 1}}},
		},
		collOrders: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "day", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "day", Value: 1}, {Key: "restaurant_id", Value: 1}}},
		},
		collClosures: {
			{Keys: bson.D{{Key: "day", Value: 1}, {Key: "restaurant_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// findAll runs a query and decodes every document into out
func (s *MongoStore) findAll(ctx context.Context, coll string, filter interface{}, sort bson.D, out interface{}) error {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := s.coll(coll).Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", coll, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", coll, err)
	}
	return nil
}

func (s *MongoStore) findOne(ctx context.Context, coll string, filter interface{}, out interface{}) error {
	err := s.coll(coll).FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", coll, err)
	}
	return nil
}

func (s *MongoStore) insert(ctx context.Context, coll string, doc interface{}) error {
	_, err := s.coll(coll).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", coll, err)
	}
	return nil
}

var byCreation = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

// Candidates

func (s *MongoStore) ListCandidates(ctx context.Context, day string) ([]models.Candidate, error) {
	candidates := []models.Candidate{}
	err := s.findAll(ctx, collCandidates, bson.M{"day": day}, byCreation, &candidates)
	return candidates, err
}

func (s *MongoStore) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	var c models.Candidate
	err := s.findOne(ctx, collCandidates, bson.M{"_id": id}, &c)
	return c, err
}

func (s *MongoStore) InsertCandidate(ctx context.Context, c models.Candidate) error {
	c.CreatedAt = c.CreatedAt.UTC()
	return s.insert(ctx, collCandidates, c)
}

func (s *MongoStore) PurgeCandidates(ctx context.Context, beforeDay string) (int64, error) {
	res, err := s.coll(collCandidates).DeleteMany(ctx, bson.M{"day": bson.M{"$lt": beforeDay}})
	if err != nil {
		return 0, fmt.Errorf("failed to purge candidates: %w", err)
	}
	return res.DeletedCount, nil
}

// Directory

func (s *MongoStore) ListDirectory(ctx context.Context) ([]models.DirectoryEntry, error) {
	entries := []models.DirectoryEntry{}
	err := s.findAll(ctx, collDirectory, bson.M{}, bson.D{{Key: "name", Value: 1}}, &entries)
	return entries, err
}

func (s *MongoStore) InsertDirectoryEntry(ctx context.Context, e models.DirectoryEntry) error {
	return s.insert(ctx, collDirectory, e)
}

// Votes

func (s *MongoStore) ListVotes(ctx context.Context, day string) ([]models.Vote, error) {
	votes := []models.Vote{}
	err := s.findAll(ctx, collVotes, bson.M{"day": day}, byCreation, &votes)
	return votes, err
}

func (s *MongoStore) InsertVote(ctx context.Context, v models.Vote) error {
	v.CreatedAt = v.CreatedAt.UTC()
	return s.insert(ctx, collVotes, v)
}

func (s *MongoStore) DeleteVotes(ctx context.Context, voterID, candidateID, day string) (int64, error) {
	res, err := s.coll(collVotes).DeleteMany(ctx, bson.M{
		"voter_id":     voterID,
		"candidate_id": candidateID,
		"day":          day,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete votes: %w", err)
	}
	return res.DeletedCount, nil
}

// Profiles

func (s *MongoStore) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	err := s.findOne(ctx, collProfiles, bson.M{"_id": userID}, &p)
	return p, err
}

func (s *MongoStore) SaveProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	update := bson.M{
		"$set": bson.M{
			"first_name":   p.FirstName,
			"last_name":    p.LastName,
			"phone_number": p.PhoneNumber,
			"updated_at":   p.UpdatedAt.UTC(),
		},
		"$setOnInsert": bson.M{
			"is_admin":   p.IsAdmin,
			"created_at": p.CreatedAt.UTC(),
		},
	}

	var saved models.Profile
	err := s.coll(collProfiles).FindOneAndUpdate(ctx, bson.M{"_id": p.UserID}, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&saved)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	return saved, nil
}

func (s *MongoStore) SetAdmin(ctx context.Context, userID string, admin bool, at time.Time) error {
	res, err := s.coll(collProfiles).UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"is_admin": admin, "updated_at": at.UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to update admin flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	sort := bson.D{{Key: "first_name", Value: 1}, {Key: "last_name", Value: 1}, {Key: "_id", Value: 1}}
	err := s.findAll(ctx, collProfiles, bson.M{}, sort, &profiles)
	return profiles, err
}

// Orders

func (s *MongoStore) ListOrders(ctx context.Context, day, restaurantID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.findAll(ctx, collOrders, bson.M{"day": day, "restaurant_id": restaurantID}, byCreation, &orders)
	return orders, err
}

func (s *MongoStore) ListOrdersByUser(ctx context.Context, userID, fromDay, toDay string) ([]models.Order, error) {
	orders := []models.Order{}
	filter := bson.M{
		"user_id": userID,
		"day":     bson.M{"$gte": fromDay, "$lte": toDay},
	}
	sort := bson.D{{Key: "day", Value: -1}, {Key: "created_at", Value: -1}}
	err := s.findAll(ctx, collOrders, filter, sort, &orders)
	return orders, err
}

func (s *MongoStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	err := s.findOne(ctx, collOrders, bson.M{"_id": id}, &o)
	return o, err
}

// UpsertOrder matches on (user_id, day). A new document takes o.ID, so the
// returned id tells whether the upsert inserted.
func (s *MongoStore) UpsertOrder(ctx context.Context, o models.Order) (models.Order, bool, error) {
	update := bson.M{
		"$set": bson.M{
			"dish_name":   o.DishName,
			"price_cents": o.PriceCents,
			"updated_at":  o.UpdatedAt.UTC(),
		},
		"$setOnInsert": bson.M{
			"_id":             o.ID,
			"restaurant_id":   o.RestaurantID,
			"restaurant_name": o.RestaurantName,
			"paid":            false,
			"created_at":      o.CreatedAt.UTC(),
		},
	}

	var stored models.Order
	err := s.coll(collOrders).FindOneAndUpdate(ctx, bson.M{"user_id": o.UserID, "day": o.Day}, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		return models.Order{}, false, ErrConflict
	}
	if err != nil {
		return models.Order{}, false, fmt.Errorf("failed to upsert order: %w", err)
	}
	return stored, stored.ID == o.ID, nil
}

func (s *MongoStore) TogglePaid(ctx context.Context, id string, at time.Time) (bool, error) {
	flip := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "paid", Value: bson.D{{Key: "$not", Value: bson.A{"$paid"}}}},
			{Key: "updated_at", Value: at.UTC()},
		}}},
	}

	var o models.Order
	err := s.coll(collOrders).FindOneAndUpdate(ctx, bson.M{"_id": id}, flip,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle paid flag: %w", err)
	}
	return o.Paid, nil
}

// Closures

func (s *MongoStore) GetClosure(ctx context.Context, day, restaurantID string) (models.Closure, error) {
	var c models.Closure
	err := s.findOne(ctx, collClosures, bson.M{"day": day, "restaurant_id": restaurantID}, &c)
	return c, err
}

func (s *MongoStore) InsertClosure(ctx context.Context, c models.Closure) error {
	c.ClosedAt = c.ClosedAt.UTC()
	return s.insert(ctx, collClosures, c)
}
