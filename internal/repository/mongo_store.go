package repository

import "go.mongodb.org/mongo-driver/v2/mongo"

// MongoStore bundles the collection repositories behind the Store interface.
type MongoStore struct {
	*MongoEventRepository
	*MongoFormRepository
	*MongoRegistrationRepository
	*MongoUserRepository
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		MongoEventRepository:        NewMongoEventRepository(db),
		MongoFormRepository:         NewMongoFormRepository(db),
		MongoRegistrationRepository: NewMongoRegistrationRepository(db),
		MongoUserRepository:         NewMongoUserRepository(db),
	}
}

var _ Store = (*MongoStore)(nil)
