package repository

import (
	"context"
	"errors"

	"orgsite-backend/internal/models"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("duplicate record")
	ErrCapacityReached = errors.New("registration capacity reached")
)

type EventStore interface {
	InsertEvent(ctx context.Context, e *models.Event) error
	FindEventByUID(ctx context.Context, uid string) (*models.Event, error)
	DeleteEvent(ctx context.Context, uid string) error
}

type FormStore interface {
	InsertForm(ctx context.Context, f *models.RegistrationForm) error
	FindFormByUID(ctx context.Context, uid string) (*models.RegistrationForm, error)
	FindFormByEvent(ctx context.Context, eventUID string) (*models.RegistrationForm, error)
	FindActiveFormByEvent(ctx context.Context, eventUID string) (*models.RegistrationForm, error)
	ListForms(ctx context.Context) ([]models.RegistrationForm, error)
	UpdateForm(ctx context.Context, f *models.RegistrationForm) error
	DeleteForm(ctx context.Context, uid string) error
	DeleteFormsByEvent(ctx context.Context, eventUID string) error
}

// RegistrationFilter selects registrations by any combination of the set fields.
// Results are ordered by submission time, newest first unless Ascending is set.
type RegistrationFilter struct {
	EventUID  string
	FormUID   string
	UserUID   string
	Ascending bool
}

type RegistrationStore interface {
	// InsertRegistration stores reg while holding the per-event counter below limit
	// (nil means unlimited). It returns ErrDuplicate when the (event, email) pair is
	// taken and ErrCapacityReached when the counter is full.
	InsertRegistration(ctx context.Context, reg *models.Registration, limit *int) error
	FindRegistrationByUID(ctx context.Context, uid string) (*models.Registration, error)
	ExistsRegistration(ctx context.Context, eventUID, email string) (bool, error)
	CountRegistrations(ctx context.Context, eventUID string) (int64, error)
	ListRegistrations(ctx context.Context, filter RegistrationFilter) ([]models.Registration, error)
	// UpdateRegistrationStatus sets the status; a non-empty ownerUID restricts the
	// update to registrations submitted by that user.
	UpdateRegistrationStatus(ctx context.Context, uid string, status models.Status, ownerUID string) (*models.Registration, error)
	DeleteRegistration(ctx context.Context, uid string) error
	DeleteRegistrationsByEvent(ctx context.Context, eventUID string) (int64, error)
}

type UserStore interface {
	InsertUser(ctx context.Context, u *models.User) error
	FindUserByUID(ctx context.Context, uid string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Store is the full persistence surface the application is wired against.
type Store interface {
	EventStore
	FormStore
	RegistrationStore
	UserStore
}
