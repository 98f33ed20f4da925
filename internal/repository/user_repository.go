package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"orgsite-backend/internal/models"
)

type MongoUserRepository struct {
	userCol *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{userCol: db.Collection(colUsers)}
}

func (r *MongoUserRepository) InsertUser(ctx context.Context, u *models.User) error {
	_, err := r.userCol.InsertOne(ctx, u)
	return mapMongoErr(err)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.userCol.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapMongoErr(err)
	}
	return &u, nil
}

func (r *MongoUserRepository) FindUserByUID(ctx context.Context, uid string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"uid": uid})
}

func (r *MongoUserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}
