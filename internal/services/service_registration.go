package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"orgsite-backend/internal/models"
	"orgsite-backend/internal/repository"
	"orgsite-backend/internal/utils"
)

const defaultNotifyTimeout = 5 * time.Second

// Notifier delivers the confirmation message for a new registration.
type Notifier interface {
	NotifyRegistration(ctx context.Context, reg *models.Registration, event *models.Event, confirmationMessage string) error
}

type RegistrationOptions struct {
	DefaultNationality string
	Location           *time.Location
	ExportTimeLayout   string
	NotifyTimeout      time.Duration
}

type RegistrationService struct {
	store    repository.Store
	notifier Notifier
	opts     RegistrationOptions
	now      func() time.Time
	newUID   func(prefix string) string
}

func NewRegistrationService(store repository.Store, notifier Notifier, opts RegistrationOptions) *RegistrationService {
	if opts.DefaultNationality == "" {
		opts.DefaultNationality = "中華民國"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = defaultNotifyTimeout
	}
	return &RegistrationService{
		store:    store,
		notifier: notifier,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
		newUID:   utils.NewUID,
	}
}

type SubmitResult struct {
	Registration        *models.Registration
	ConfirmationMessage string
}

// effectiveLimit is the form's maxRegistrations, or the event's maxParticipants
// when the form sets none. Non-positive values mean unlimited.
func effectiveLimit(form *models.RegistrationForm, event *models.Event) *int {
	if form.MaxRegistrations != nil && *form.MaxRegistrations > 0 {
		return form.MaxRegistrations
	}
	if event.MaxParticipants != nil && *event.MaxParticipants > 0 {
		return event.MaxParticipants
	}
	return nil
}

// Submit registers the caller (possibly anonymous) for the event. Checks run in a
// fixed order and the first failure is returned; the store enforces uniqueness and
// capacity again at insert time.
func (s *RegistrationService) Submit(ctx context.Context, eventUID string, in SubmissionInput, caller models.Caller) (*SubmitResult, error) {
	form, err := s.store.FindActiveFormByEvent(ctx, eventUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("load form: %w", err)
	}

	event, err := s.store.FindEventByUID(ctx, eventUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}

	now := s.now()
	if form.DeadlinePassed(now) {
		return nil, ErrDeadlinePassed
	}

	email := NormalizeEmail(in.Email)
	exists, err := s.store.ExistsRegistration(ctx, eventUID, email)
	if err != nil {
		return nil, fmt.Errorf("check existing registration: %w", err)
	}
	if exists {
		return nil, ErrAlreadyRegistered
	}

	limit := effectiveLimit(form, event)
	if limit != nil {
		n, err := s.store.CountRegistrations(ctx, eventUID)
		if err != nil {
			return nil, fmt.Errorf("count registrations: %w", err)
		}
		if n >= int64(*limit) {
			return nil, ErrLimitReached
		}
	}

	if err := ValidateSubmission(in, form.CustomFields); err != nil {
		return nil, err
	}

	reg := &models.Registration{
		UID:             s.newUID("reg"),
		FormUID:         form.UID,
		EventUID:        eventUID,
		Name:            strings.TrimSpace(in.Name),
		Email:           email,
		Phone:           strings.TrimSpace(in.Phone),
		Nationality:     strings.TrimSpace(in.Nationality),
		School:          strings.TrimSpace(in.School),
		Department:      strings.TrimSpace(in.Department),
		StudentID:       strings.TrimSpace(in.StudentID),
		CustomResponses: normalizeResponses(in.Responses, form.CustomFields),
		Status:          models.StatusPending,
		SubmittedAt:     now,
	}
	if reg.Nationality == "" {
		reg.Nationality = s.opts.DefaultNationality
	}
	if caller.Authenticated() {
		uid := caller.UID
		reg.UserUID = &uid
	}

	if err := s.store.InsertRegistration(ctx, reg, limit); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAlreadyRegistered
		case errors.Is(err, repository.ErrCapacityReached):
			return nil, ErrLimitReached
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	s.notify(ctx, reg, event, form.ConfirmationMessage)

	return &SubmitResult{Registration: reg, ConfirmationMessage: form.ConfirmationMessage}, nil
}

// notify never fails the submission.
func (s *RegistrationService) notify(ctx context.Context, reg *models.Registration, event *models.Event, message string) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.NotifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyRegistration(nctx, reg, event, message); err != nil {
		log.Printf("registration %s: confirmation to %s failed: %v", reg.UID, reg.Email, err)
	}
}

func requireAdmin(caller models.Caller) error {
	if !caller.Authenticated() {
		return ErrUnauthorized
	}
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func mapRegistrationErr(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRegistrationNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// UpdateStatus lets an admin move a registration to any of the three states.
func (s *RegistrationService) UpdateStatus(ctx context.Context, uid, status string, caller models.Caller) (*models.Registration, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	st := models.Status(status)
	if !st.Valid() {
		return nil, ErrInvalidStatus
	}
	reg, err := s.store.UpdateRegistrationStatus(ctx, uid, st, "")
	if err != nil {
		return nil, mapRegistrationErr(err, "update status")
	}
	return reg, nil
}

// CancelOwn cancels a registration submitted by the caller. Someone else's
// registration is reported exactly like a missing one.
func (s *RegistrationService) CancelOwn(ctx context.Context, uid string, caller models.Caller) (*models.Registration, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	reg, err := s.store.UpdateRegistrationStatus(ctx, uid, models.StatusCancelled, caller.UID)
	if err != nil {
		return nil, mapRegistrationErr(err, "cancel registration")
	}
	return reg, nil
}

func (s *RegistrationService) Delete(ctx context.Context, uid string, caller models.Caller) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.store.DeleteRegistration(ctx, uid); err != nil {
		return mapRegistrationErr(err, "delete registration")
	}
	return nil
}

func (s *RegistrationService) Get(ctx context.Context, uid string, caller models.Caller) (*models.Registration, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	reg, err := s.store.FindRegistrationByUID(ctx, uid)
	if err != nil {
		return nil, mapRegistrationErr(err, "get registration")
	}
	return reg, nil
}

func (s *RegistrationService) ListForEvent(ctx context.Context, eventUID string, caller models.Caller) ([]models.Registration, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.RegistrationFilter{EventUID: eventUID})
}

func (s *RegistrationService) ListForForm(ctx context.Context, formUID string, caller models.Caller) ([]models.Registration, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.RegistrationFilter{FormUID: formUID})
}

func (s *RegistrationService) ListForOwner(ctx context.Context, caller models.Caller) ([]models.Registration, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	return s.list(ctx, repository.RegistrationFilter{UserUID: caller.UID})
}

func (s *RegistrationService) list(ctx context.Context, f repository.RegistrationFilter) ([]models.Registration, error) {
	regs, err := s.store.ListRegistrations(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// Export renders the event's registrations, oldest first, as CSV.
func (s *RegistrationService) Export(ctx context.Context, eventUID string, caller models.Caller) ([]byte, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	regs, err := s.list(ctx, repository.RegistrationFilter{EventUID: eventUID, Ascending: true})
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, ErrNoRegistrations
	}
	return BuildRegistrationsCSV(regs, s.opts.Location, s.opts.ExportTimeLayout), nil
}
