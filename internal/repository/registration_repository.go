package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"orgsite-backend/internal/models"
)

// MongoRegistrationRepository keeps one counter document per event next to the
// registrations so that capacity can be enforced with a conditional $inc, and relies
// on the unique (event_uid, email) index for duplicate submissions.
type MongoRegistrationRepository struct {
	regCol     *mongo.Collection
	counterCol *mongo.Collection
}

func NewMongoRegistrationRepository(db *mongo.Database) *MongoRegistrationRepository {
	return &MongoRegistrationRepository{
		regCol:     db.Collection(colRegistration),
		counterCol: db.Collection(colCounters),
	}
}

func (r *MongoRegistrationRepository) ensureCounter(ctx context.Context, eventUID string) error {
	err := r.counterCol.FindOne(ctx, bson.M{"_id": eventUID}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	// seed from registrations written before the counter existed
	n, err := r.regCol.CountDocuments(ctx, bson.M{"event_uid": eventUID})
	if err != nil {
		return err
	}
	_, err = r.counterCol.UpdateOne(ctx,
		bson.M{"_id": eventUID},
		bson.M{"$setOnInsert": bson.M{"taken": n}},
		options.UpdateOne().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		// another request seeded it first
		return nil
	}
	return err
}

func (r *MongoRegistrationRepository) reserveSlot(ctx context.Context, eventUID string, limit *int) error {
	if err := r.ensureCounter(ctx, eventUID); err != nil {
		return fmt.Errorf("seed counter: %w", err)
	}

	filter := bson.M{"_id": eventUID}
	if limit != nil {
		filter["taken"] = bson.M{"$lt": *limit}
	}
	res, err := r.counterCol.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"taken": 1}})
	if err != nil {
		return fmt.Errorf("reserve slot: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCapacityReached
	}
	return nil
}

func (r *MongoRegistrationRepository) releaseSlot(ctx context.Context, eventUID string) {
	_, err := r.counterCol.UpdateOne(ctx,
		bson.M{"_id": eventUID, "taken": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"taken": -1}},
	)
	if err != nil {
		log.Printf("registration counter release failed for %s: %v", eventUID, err)
	}
}

// insertWithSlot takes a counter slot, runs insert and gives the slot back when the
// insert fails. Insert errors are mapped to the package sentinels.
func insertWithSlot(reserve func() error, insert func() error, release func()) error {
	if err := reserve(); err != nil {
		return err
	}
	if err := insert(); err != nil {
		release()
		return mapMongoErr(err)
	}
	return nil
}

func (r *MongoRegistrationRepository) InsertRegistration(ctx context.Context, reg *models.Registration, limit *int) error {
	return insertWithSlot(
		func() error { return r.reserveSlot(ctx, reg.EventUID, limit) },
		func() error {
			_, err := r.regCol.InsertOne(ctx, reg)
			return err
		},
		func() { r.releaseSlot(ctx, reg.EventUID) },
	)
}

func (r *MongoRegistrationRepository) FindRegistrationByUID(ctx context.Context, uid string) (*models.Registration, error) {
	var reg models.Registration
	if err := r.regCol.FindOne(ctx, bson.M{"uid": uid}).Decode(&reg); err != nil {
		return nil, mapMongoErr(err)
	}
	return &reg, nil
}

func (r *MongoRegistrationRepository) ExistsRegistration(ctx context.Context, eventUID, email string) (bool, error) {
	n, err := r.regCol.CountDocuments(ctx,
		bson.M{"event_uid": eventUID, "email": email},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoRegistrationRepository) CountRegistrations(ctx context.Context, eventUID string) (int64, error) {
	return r.regCol.CountDocuments(ctx, bson.M{"event_uid": eventUID})
}

func (r *MongoRegistrationRepository) ListRegistrations(ctx context.Context, f RegistrationFilter) ([]models.Registration, error) {
	filter := bson.M{}
	if f.EventUID != "" {
		filter["event_uid"] = f.EventUID
	}
	if f.FormUID != "" {
		filter["form_uid"] = f.FormUID
	}
	if f.UserUID != "" {
		filter["user_uid"] = f.UserUID
	}
	order := -1
	if f.Ascending {
		order = 1
	}

	cur, err := r.regCol.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "submitted_at", Value: order}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	regs := []models.Registration{}
	if err := cur.All(ctx, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *MongoRegistrationRepository) UpdateRegistrationStatus(ctx context.Context, uid string, status models.Status, ownerUID string) (*models.Registration, error) {
	filter := bson.M{"uid": uid}
	if ownerUID != "" {
		filter["user_uid"] = ownerUID
	}
	now := time.Now().UTC()

	var reg models.Registration
	err := r.regCol.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"status": status, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&reg)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &reg, nil
}

func (r *MongoRegistrationRepository) DeleteRegistration(ctx context.Context, uid string) error {
	var reg models.Registration
	if err := r.regCol.FindOneAndDelete(ctx, bson.M{"uid": uid}).Decode(&reg); err != nil {
		return mapMongoErr(err)
	}
	r.releaseSlot(ctx, reg.EventUID)
	return nil
}

func (r *MongoRegistrationRepository) DeleteRegistrationsByEvent(ctx context.Context, eventUID string) (int64, error) {
	res, err := r.regCol.DeleteMany(ctx, bson.M{"event_uid": eventUID})
	if err != nil {
		return 0, err
	}
	if _, err := r.counterCol.DeleteOne(ctx, bson.M{"_id": eventUID}); err != nil {
		return res.DeletedCount, err
	}
	return res.DeletedCount, nil
}
