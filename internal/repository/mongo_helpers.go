package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	colEvents       = "events"
	colForms        = "registration_forms"
	colRegistration = "registrations"
	colCounters     = "registration_counters"
	colUsers        = "users"
)

// mapMongoErr folds driver errors into the package sentinels.
func mapMongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}
