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

type EventInput struct {
	Title           string
	Slug            string
	Description     string
	Date            time.Time
	Location        string
	MaxParticipants *int
}

// EventService is the small event registry registrations hang off.
type EventService struct {
	store  repository.Store
	now    func() time.Time
	newUID func(prefix string) string
}

func NewEventService(store repository.Store) *EventService {
	return &EventService{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		newUID: utils.NewUID,
	}
}

func (s *EventService) Create(ctx context.Context, in EventInput) (*models.Event, error) {
	title := strings.TrimSpace(in.Title)
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	switch {
	case title == "":
		return nil, invalid("title is required")
	case slug == "":
		return nil, invalid("slug is required")
	case in.Date.IsZero():
		return nil, invalid("date is required")
	}

	now := s.now()
	event := &models.Event{
		UID:             s.newUID("evt"),
		Title:           title,
		Slug:            slug,
		Description:     strings.TrimSpace(in.Description),
		Date:            in.Date.UTC(),
		Location:        strings.TrimSpace(in.Location),
		MaxParticipants: positiveOrNil(in.MaxParticipants),
		CreatedAt:       &now,
		UpdatedAt:       &now,
	}
	if err := s.store.InsertEvent(ctx, event); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

func (s *EventService) Get(ctx context.Context, uid string) (*models.Event, error) {
	event, err := s.store.FindEventByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// Delete removes the event together with its form and registrations.
func (s *EventService) Delete(ctx context.Context, uid string) error {
	if _, err := s.Get(ctx, uid); err != nil {
		return err
	}

	removed, err := s.store.DeleteRegistrationsByEvent(ctx, uid)
	if err != nil {
		return fmt.Errorf("delete registrations: %w", err)
	}
	if err := s.store.DeleteFormsByEvent(ctx, uid); err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	if err := s.store.DeleteEvent(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	log.Printf("event %s deleted with %d registrations", uid, removed)
	return nil
}
