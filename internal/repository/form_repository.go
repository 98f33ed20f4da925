package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"orgsite-backend/internal/models"
)

type MongoFormRepository struct {
	formCol *mongo.Collection
}

func NewMongoFormRepository(db *mongo.Database) *MongoFormRepository {
	return &MongoFormRepository{formCol: db.Collection(colForms)}
}

func (r *MongoFormRepository) InsertForm(ctx context.Context, f *models.RegistrationForm) error {
	_, err := r.formCol.InsertOne(ctx, f)
	return mapMongoErr(err)
}

func (r *MongoFormRepository) findOne(ctx context.Context, filter bson.M) (*models.RegistrationForm, error) {
	var f models.RegistrationForm
	if err := r.formCol.FindOne(ctx, filter).Decode(&f); err != nil {
		return nil, mapMongoErr(err)
	}
	return &f, nil
}

func (r *MongoFormRepository) FindFormByUID(ctx context.Context, uid string) (*models.RegistrationForm, error) {
	return r.findOne(ctx, bson.M{"uid": uid})
}

func (r *MongoFormRepository) FindFormByEvent(ctx context.Context, eventUID string) (*models.RegistrationForm, error) {
	return r.findOne(ctx, bson.M{"event_uid": eventUID})
}

func (r *MongoFormRepository) FindActiveFormByEvent(ctx context.Context, eventUID string) (*models.RegistrationForm, error) {
	return r.findOne(ctx, bson.M{"event_uid": eventUID, "is_active": true})
}

func (r *MongoFormRepository) ListForms(ctx context.Context) ([]models.RegistrationForm, error) {
	cur, err := r.formCol.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	forms := []models.RegistrationForm{}
	if err := cur.All(ctx, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *MongoFormRepository) UpdateForm(ctx context.Context, f *models.RegistrationForm) error {
	res, err := r.formCol.ReplaceOne(ctx, bson.M{"uid": f.UID}, f)
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoFormRepository) DeleteForm(ctx context.Context, uid string) error {
	res, err := r.formCol.DeleteOne(ctx, bson.M{"uid": uid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoFormRepository) DeleteFormsByEvent(ctx context.Context, eventUID string) error {
	_, err := r.formCol.DeleteMany(ctx, bson.M{"event_uid": eventUID})
	return err
}
