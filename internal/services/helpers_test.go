package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"orgsite-backend/internal/models"
	"orgsite-backend/internal/repository"
)

var (
	admin  = models.Caller{UID: "usr_admin", Role: models.RoleAdmin}
	member = models.Caller{UID: "usr_member", Role: models.RoleMember}
	anon   = models.Caller{}
)

func newTestStore(t *testing.T) *repository.SQLStore {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := repository.NewSQLStore(db, repository.DriverSQLite)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

type notifyCall struct {
	reg     models.Registration
	event   string
	message string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (n *fakeNotifier) NotifyRegistration(_ context.Context, reg *models.Registration, event *models.Event, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{reg: *reg, event: event.Title, message: message})
	return n.err
}

// clock is a settable time source for services under test.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func seedEvent(t *testing.T, store repository.Store, uid, title string) *models.Event {
	t.Helper()
	ev := &models.Event{
		UID:      uid,
		Title:    title,
		Slug:     uid + "-slug",
		Date:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Location: "Room 101",
	}
	if err := store.InsertEvent(context.Background(), ev); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return ev
}

func seedForm(t *testing.T, store repository.Store, eventUID string, mutate func(*models.RegistrationForm)) *models.RegistrationForm {
	t.Helper()
	form := &models.RegistrationForm{
		UID:                 "form_" + eventUID,
		EventUID:            eventUID,
		IsActive:            true,
		ConfirmationMessage: "See you there",
	}
	if mutate != nil {
		mutate(form)
	}
	if err := store.InsertForm(context.Background(), form); err != nil {
		t.Fatalf("seed form: %v", err)
	}
	return form
}

func wantErr(t *testing.T, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Fatalf("err = %v, want %v", got, want)
	}
}

func wantValidation(t *testing.T, err error, reason string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if ve.Reason != reason {
		t.Fatalf("reason = %q, want %q", ve.Reason, reason)
	}
}

func intPtr(n int) *int { return &n }
