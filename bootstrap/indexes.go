package bootstrap

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func uniqueOn(name string, keys ...string) mongo.IndexModel {
	d := bson.D{}
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return mongo.IndexModel{
		Keys:    d,
		Options: options.Index().SetUnique(true).SetName(name),
	}
}

func indexOn(name string, key string, order int) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: key, Value: order}},
		Options: options.Index().SetName(name),
	}
}

var indexPlan = []collectionIndexes{
	{"events", []mongo.IndexModel{
		uniqueOn("uniq_event_uid", "uid"),
		uniqueOn("uniq_event_slug", "slug"),
	}},
	{"registration_forms", []mongo.IndexModel{
		uniqueOn("uniq_form_uid", "uid"),
		// one form per event
		uniqueOn("uniq_form_event", "event_uid"),
	}},
	{"registrations", []mongo.IndexModel{
		uniqueOn("uniq_registration_uid", "uid"),
		// one registration per email per event
		uniqueOn("uniq_event_email", "event_uid", "email"),
		indexOn("idx_registration_form", "form_uid", 1),
		indexOn("idx_registration_user", "user_uid", 1),
		indexOn("idx_registration_submitted", "submitted_at", -1),
	}},
	{"users", []mongo.IndexModel{
		uniqueOn("uniq_user_uid", "uid"),
		uniqueOn("uniq_user_email", "email"),
		uniqueOn("uniq_user_username", "username"),
	}},
}

// EnsureIndexes creates the indexes the repositories rely on for uniqueness.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, ci := range indexPlan {
		if _, err := db.Collection(ci.collection).Indexes().CreateMany(ctx, ci.models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", ci.collection, err)
		}
	}
	return nil
}
