package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"orgsite-backend/internal/models"
)

type MongoEventRepository struct {
	eventCol *mongo.Collection
}

func NewMongoEventRepository(db *mongo.Database) *MongoEventRepository {
	return &MongoEventRepository{eventCol: db.Collection(colEvents)}
}

func (r *MongoEventRepository) InsertEvent(ctx context.Context, e *models.Event) error {
	_, err := r.eventCol.InsertOne(ctx, e)
	return mapMongoErr(err)
}

func (r *MongoEventRepository) FindEventByUID(ctx context.Context, uid string) (*models.Event, error) {
	var e models.Event
	if err := r.eventCol.FindOne(ctx, bson.M{"uid": uid}).Decode(&e); err != nil {
		return nil, mapMongoErr(err)
	}
	return &e, nil
}

func (r *MongoEventRepository) DeleteEvent(ctx context.Context, uid string) error {
	res, err := r.eventCol.DeleteOne(ctx, bson.M{"uid": uid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
