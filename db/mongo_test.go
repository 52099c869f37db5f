// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/danielhkuo/lunchpick/db"
	"github.com/danielhkuo/lunchpick/models"
)

const mockDB = "lunchpick_test"

func newMockStore(mt *mtest.T) *db.MongoStore {
	return db.NewMongoStore(mt.Client, mockDB)
}

func orderDoc(id, dish string, paid bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: "ann"},
		{Key: "restaurant_id", Value: "r1"},
		{Key: "restaurant_name", Value: "Bistro"},
		{Key: "dish_name", Value: dish},
		{Key: "price_cents", Value: int64(500)},
		{Key: "day", Value: "2025-03-12"},
		{Key: "paid", Value: paid},
	}
}

var duplicateKey = mtest.CommandError{Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error"}

func TestMongoUpsertOrder(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	now := time.Date(2025, 3, 12, 12, 30, 0, 0, time.UTC)
	order := models.Order{
		ID:             "o1",
		UserID:         "ann",
		RestaurantID:   "r1",
		RestaurantName: "Bistro",
		DishName:       "Soup",
		PriceCents:     500,
		Day:            "2025-03-12",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	mt.Run("insert", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: orderDoc("o1", "Soup", false)}))

		stored, created, err := store.UpsertOrder(context.Background(), order)
		if err != nil {
			mt.Fatalf("UpsertOrder failed: %v", err)
		}
		if !created || stored.ID != "o1" || stored.DishName != "Soup" {
			mt.Errorf("expected a created order, got created=%v %+v", created, stored)
		}

		cmd := mt.GetStartedEvent().Command
		if coll, _ := cmd.Lookup("findAndModify").StringValueOK(); coll != "orders" {
			mt.Errorf("expected findAndModify on orders, got %q", coll)
		}
		if upsert, _ := cmd.Lookup("upsert").BooleanOK(); !upsert {
			mt.Error("expected upsert flag")
		}
		if user, _ := cmd.Lookup("query", "user_id").StringValueOK(); user != "ann" {
			mt.Errorf("expected match on user_id, got %q", user)
		}
		if id, _ := cmd.Lookup("update", "$setOnInsert", "_id").StringValueOK(); id != "o1" {
			mt.Errorf("new id must only be set on insert, got %q", id)
		}
	})

	mt.Run("update keeps existing id", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: orderDoc("existing", "Curry", false)}))

		stored, created, err := store.UpsertOrder(context.Background(), order)
		if err != nil {
			mt.Fatalf("UpsertOrder failed: %v", err)
		}
		if created || stored.ID != "existing" || stored.DishName != "Curry" {
			mt.Errorf("expected an update of the existing order, got created=%v %+v", created, stored)
		}
	})

	mt.Run("duplicate key", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(duplicateKey))

		_, _, err := store.UpsertOrder(context.Background(), order)
		if !errors.Is(err, db.ErrConflict) {
			mt.Errorf("expected ErrConflict, got %v", err)
		}
	})
}

func TestMongoTogglePaid(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	at := time.Date(2025, 3, 12, 13, 0, 0, 0, time.UTC)

	mt.Run("flips flag", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: orderDoc("o1", "Soup", true)}))

		paid, err := store.TogglePaid(context.Background(), "o1", at)
		if err != nil {
			mt.Fatalf("TogglePaid failed: %v", err)
		}
		if !paid {
			mt.Error("expected paid=true from the updated document")
		}

		cmd := mt.GetStartedEvent().Command
		if cmd.Lookup("update").Type != bson.TypeArray {
			mt.Errorf("expected a pipeline update, got %s", cmd.Lookup("update").Type)
		}
		if id, _ := cmd.Lookup("query", "_id").StringValueOK(); id != "o1" {
			mt.Errorf("expected match on _id, got %q", id)
		}
	})

	mt.Run("missing order", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		if _, err := store.TogglePaid(context.Background(), "missing", at); !errors.Is(err, db.ErrNotFound) {
			mt.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMongoLookups(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get missing order", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockDB+".orders", mtest.FirstBatch))

		if _, err := store.GetOrder(context.Background(), "missing"); !errors.Is(err, db.ErrNotFound) {
			mt.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("get missing closure", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockDB+".order_closures", mtest.FirstBatch))

		if _, err := store.GetClosure(context.Background(), "2025-03-12", "r1"); !errors.Is(err, db.ErrNotFound) {
			mt.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("list orders", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockDB+".orders", mtest.FirstBatch,
			orderDoc("o1", "Soup", false),
			orderDoc("o2", "Salad", true),
		))

		orders, err := store.ListOrders(context.Background(), "2025-03-12", "r1")
		if err != nil {
			mt.Fatalf("ListOrders failed: %v", err)
		}
		if len(orders) != 2 || orders[1].DishName != "Salad" || !orders[1].Paid {
			mt.Errorf("unexpected orders: %+v", orders)
		}
	})
}

func TestMongoInsertDuplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("closure", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}))

		err := store.InsertClosure(context.Background(), models.Closure{Day: "2025-03-12", RestaurantID: "r1"})
		if !errors.Is(err, db.ErrConflict) {
			mt.Errorf("expected ErrConflict, got %v", err)
		}
	})

	mt.Run("vote insert succeeds", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := store.InsertVote(context.Background(), models.Vote{ID: "v1", VoterID: "ann", CandidateID: "c1", Day: "2025-03-12"})
		if err != nil {
			mt.Errorf("InsertVote failed: %v", err)
		}
	})
}

func TestMongoSetAdmin(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	at := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	mt.Run("existing profile", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		if err := store.SetAdmin(context.Background(), "boss", true, at); err != nil {
			mt.Errorf("SetAdmin failed: %v", err)
		}
	})

	mt.Run("missing profile", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		if err := store.SetAdmin(context.Background(), "ghost", true, at); !errors.Is(err, db.ErrNotFound) {
			mt.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
