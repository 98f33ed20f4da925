package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orgsite-backend/internal/models"
	"orgsite-backend/internal/repository"
	"orgsite-backend/internal/utils"
)

type FormInput struct {
	EventUID             string
	CustomFields         []models.CustomField
	MaxRegistrations     *int
	RegistrationDeadline *time.Time
	ConfirmationMessage  string
	IsActive             *bool
}

// FormUpdate changes only the fields that are set. A MaxRegistrations of zero or
// less removes the limit; ClearDeadline removes the deadline.
type FormUpdate struct {
	CustomFields         *[]models.CustomField
	MaxRegistrations     *int
	RegistrationDeadline *time.Time
	ClearDeadline        bool
	ConfirmationMessage  *string
	IsActive             *bool
}

type FormService struct {
	store  repository.Store
	now    func() time.Time
	newUID func(prefix string) string
}

func NewFormService(store repository.Store) *FormService {
	return &FormService{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		newUID: utils.NewUID,
	}
}

func positiveOrNil(n *int) *int {
	if n == nil || *n <= 0 {
		return nil
	}
	v := *n
	return &v
}

// normalizeFields trims labels and options, assigns missing ids and rejects
// option-based fields without options.
func (s *FormService) normalizeFields(fields []models.CustomField) ([]models.CustomField, error) {
	out := make([]models.CustomField, 0, len(fields))
	ids := make(map[string]bool, len(fields))
	for _, f := range fields {
		f.Label = strings.TrimSpace(f.Label)
		if f.Label == "" {
			return nil, invalid("field label is required")
		}
		if f.Type == "" {
			f.Type = models.FieldText
		}
		if !f.Type.Valid() {
			return nil, invalid("unknown field type: %s", f.Type)
		}

		if f.Type.HasOptions() {
			opts := make([]string, 0, len(f.Options))
			for _, o := range f.Options {
				if o = strings.TrimSpace(o); o != "" {
					opts = append(opts, o)
				}
			}
			if len(opts) == 0 {
				return nil, invalid("options are required for field: %s", f.Label)
			}
			f.Options = opts
		} else {
			f.Options = nil
		}

		f.FieldID = strings.TrimSpace(f.FieldID)
		if f.FieldID == "" {
			f.FieldID = s.newUID("field")
		}
		if ids[f.FieldID] {
			return nil, invalid("duplicate field id: %s", f.FieldID)
		}
		ids[f.FieldID] = true

		f.Placeholder = strings.TrimSpace(f.Placeholder)
		out = append(out, f)
	}
	return out, nil
}

func (s *FormService) Create(ctx context.Context, in FormInput) (*models.RegistrationForm, error) {
	if strings.TrimSpace(in.EventUID) == "" {
		return nil, invalid("eventUid is required")
	}
	if _, err := s.store.FindEventByUID(ctx, in.EventUID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}

	if _, err := s.store.FindFormByEvent(ctx, in.EventUID); err == nil {
		return nil, ErrFormExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing form: %w", err)
	}

	fields, err := s.normalizeFields(in.CustomFields)
	if err != nil {
		return nil, err
	}

	now := s.now()
	form := &models.RegistrationForm{
		UID:                  s.newUID("form"),
		EventUID:             in.EventUID,
		IsActive:             true,
		CustomFields:         fields,
		MaxRegistrations:     positiveOrNil(in.MaxRegistrations),
		RegistrationDeadline: in.RegistrationDeadline,
		ConfirmationMessage:  strings.TrimSpace(in.ConfirmationMessage),
		CreatedAt:            &now,
		UpdatedAt:            &now,
	}
	if in.IsActive != nil {
		form.IsActive = *in.IsActive
	}
	if form.ConfirmationMessage == "" {
		form.ConfirmationMessage = models.DefaultConfirmationMessage
	}

	if err := s.store.InsertForm(ctx, form); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrFormExists
		}
		return nil, fmt.Errorf("insert form: %w", err)
	}
	return form, nil
}

func (s *FormService) List(ctx context.Context) ([]models.RegistrationForm, error) {
	forms, err := s.store.ListForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return forms, nil
}

func (s *FormService) Get(ctx context.Context, uid string) (*models.RegistrationForm, error) {
	form, err := s.store.FindFormByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFormMissing
		}
		return nil, fmt.Errorf("get form: %w", err)
	}
	return form, nil
}

// ActiveForEvent is the public lookup used by the registration page.
func (s *FormService) ActiveForEvent(ctx context.Context, eventUID string) (*models.RegistrationForm, error) {
	form, err := s.store.FindActiveFormByEvent(ctx, eventUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("get active form: %w", err)
	}
	return form, nil
}

func (s *FormService) Update(ctx context.Context, uid string, upd FormUpdate) (*models.RegistrationForm, error) {
	form, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	if upd.CustomFields != nil {
		fields, err := s.normalizeFields(*upd.CustomFields)
		if err != nil {
			return nil, err
		}
		form.CustomFields = fields
	}
	if upd.MaxRegistrations != nil {
		form.MaxRegistrations = positiveOrNil(upd.MaxRegistrations)
	}
	if upd.ClearDeadline {
		form.RegistrationDeadline = nil
	} else if upd.RegistrationDeadline != nil {
		form.RegistrationDeadline = upd.RegistrationDeadline
	}
	if upd.ConfirmationMessage != nil {
		msg := strings.TrimSpace(*upd.ConfirmationMessage)
		if msg == "" {
			msg = models.DefaultConfirmationMessage
		}
		form.ConfirmationMessage = msg
	}
	if upd.IsActive != nil {
		form.IsActive = *upd.IsActive
	}
	return s.save(ctx, form)
}

// Toggle flips the active flag.
func (s *FormService) Toggle(ctx context.Context, uid string) (*models.RegistrationForm, error) {
	form, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	form.IsActive = !form.IsActive
	return s.save(ctx, form)
}

func (s *FormService) save(ctx context.Context, form *models.RegistrationForm) (*models.RegistrationForm, error) {
	now := s.now()
	form.UpdatedAt = &now
	if err := s.store.UpdateForm(ctx, form); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFormMissing
		}
		return nil, fmt.Errorf("update form: %w", err)
	}
	return form, nil
}

// Delete removes the form only; its registrations stay exportable by event.
func (s *FormService) Delete(ctx context.Context, uid string) error {
	if err := s.store.DeleteForm(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFormMissing
		}
		return fmt.Errorf("delete form: %w", err)
	}
	return nil
}
