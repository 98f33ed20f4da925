package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"orgsite-backend/internal/models"
	"orgsite-backend/internal/repository"
)

type registrationFixture struct {
	store    *repository.SQLStore
	svc      *RegistrationService
	notifier *fakeNotifier
	clock    *clock
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	store := newTestStore(t)
	notifier := &fakeNotifier{}
	c := &clock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}

	svc := NewRegistrationService(store, notifier, RegistrationOptions{})
	svc.now = c.now
	n := 0
	svc.newUID = func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%04d", prefix, n)
	}
	return &registrationFixture{store: store, svc: svc, notifier: notifier, clock: c}
}

func (f *registrationFixture) submit(eventUID, name, email string, caller models.Caller) (*SubmitResult, error) {
	f.clock.advance(time.Second)
	return f.svc.Submit(context.Background(), eventUID, SubmissionInput{Name: name, Email: email, Phone: "0912"}, caller)
}

func TestSubmitValidRegistrationIsPendingAndListed(t *testing.T) {
	f := newRegistrationFixture(t)
	seedEvent(t, f.store, "evt_1", "Policy Talk")
	seedForm(t, f.store, "evt_1", nil)

	res, err := f.submit("evt_1", "Alice", "  Alice@Example.com ", anon)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	reg := res.Registration
	if reg.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", reg.Status)
	}
	if reg.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized", reg.Email)
	}
	if reg.Nationality != "中華民國" {
		t.Errorf("nationality = %q, want default", reg.Nationality)
	}
	if reg.UserUID != nil {
		t.Errorf("anonymous submission has userUid %q", *reg.UserUID)
	}
	if !reg.SubmittedAt.Equal(f.clock.t) {
		t.Errorf("submittedAt = %v, want %v", reg.SubmittedAt, f.clock.t)
	}
	if res.ConfirmationMessage != "See you there" {
		t.Errorf("confirmation = %q", res.ConfirmationMessage)
	}

	list, err := f.svc.ListForEvent(context.Background(), "evt_1", admin)
	if err != nil {
		t.Fatalf("ListForEvent: %v", err)
	}
	if len(list) != 1 || list[0].UID != reg.UID {
		t.Fatalf("list = %+v", list)
	}

	if len(f.notifier.calls) != 1 {
		t.Fatalf("notifier calls = %d, want 1", len(f.notifier.calls))
	}
	call := f.notifier.calls[0]
	if call.event != "Policy Talk" || call.message != "See you there" || call.reg.Email != "alice@example.com" {
		t.Errorf("notify call = %+v", call)
	}
}

func TestSubmitRecordsOwnerForAuthenticatedCaller(t *testing.T) {
	f := newRegistrationFixture(t)
	seedEvent(t, f.store, "evt_1", "Policy Talk")
	seedForm(t, f.store, "evt_1", nil)

	res, err := f.svc.Submit(context.Background(), "evt_1", SubmissionInput{
		Name: "Ann", Email: "ann@x.io", Phone: "1", Nationality: "Japan",
	}, member)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Registration.UserUID == nil || *res.Registration.UserUID != member.UID {
		t.Fatalf("userUid = %v, want %s", res.Registration.UserUID, member.UID)
	}
	if res.Registration.Nationality != "Japan" {
		t.Errorf("nationality = %q, want Japan", res.Registration.Nationality)
	}

	mine, err := f.svc.ListForOwner(context.Background(), member)
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListForOwner = %v, %v", mine, err)
	}
	if _, err := f.svc.ListForOwner(context.Background(), anon); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("anonymous ListForOwner err = %v", err)
	}
}

func TestSubmitDuplicateEmailRejected(t *testing.T) {
	f := newRegistrationFixture(t)
	seedEvent(t, f.store, "evt_1", "Policy Talk")
	seedForm(t, f.store, "evt_1", nil)

	if _, err := f.submit("evt_1", "Alice", "alice@example.com", anon); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	for i := 0; i < 2; i++ {
		_, err := f.submit("evt_1", "Alice Again", "ALICE@example.com", anon)
		wantErr(t, err, ErrAlreadyRegistered)
	}

	n, err := f.store.CountRegistrations(context.Background(), "evt_1")
	if err != nil || n != 1 {
		t.Fatalf("stored = %d, %v; want 1", n, err)
	}

	// the same email may register for another event
	seedEvent(t, f.store, "evt_2", "Other")
	seedForm(t, f.store, "evt_2", nil)
	if _, err := f.submit("evt_2", "Alice", "alice@example.com", anon); err != nil {
		t.Fatalf("other event submit: %v", err)
	}
}

func TestSubmitCapacityBoundary(t *testing.T) {
	f := newRegistrationFixture(t)
	seedEvent(t, f.store, "evt_1", "Workshop")
	seedForm(t, f.store, "evt_1", func(form *models.RegistrationForm) { form.MaxRegistrations = intPtr(2) })

	for i := 0; i < 2; i++ {
		if _, err := f.submit("evt_1", "P", fmt.Sprintf("p%d@x.io", i), anon); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	_, err := f.submit("evt_1", "P", "late@x.io", anon)
	wantErr(t, err, ErrLimitReached)

	// cancelled registrations still hold their slot
	list, _ := f.svc.ListForEvent(context.Background(), "evt_1", admin)
	if _, err := f.svc.UpdateStatus(context.Background(), list[0].UID, "cancelled", admin); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	_, err = f.submit("evt_1", "P", "late@x.io", anon)
	wantErr(t, err, ErrLimitReached)

	// deleting one frees it
	if err := f.svc.Delete(context.Background(), list[0].UID, admin); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.submit("evt_1", "P", "late@x.io", anon); err != nil {
		t.Fatalf("submit after delete: %v", err)
	}
}

func TestSubmitZeroLimitMeansUnlimited(t *testing.T) {
	f := newRegistrationFixture(t)
	seedEvent(t, f.store, "evt_1", "Open Day")
	seedForm(t, f.store, "evt_1", func(form *models.RegistrationForm) { form.MaxRegistrations = intPtr(0) })

	for i := 0; i < 3; i++ {
		if _, err := f.submit("evt_1", "P", fmt.Sprintf("p%d@x.io", i), anon); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
}

func TestSubmitFallsBackToEventCapacity(t *testing.T) {
	f := newRegistrationFixture(t)
	ev := &models.Event{
		UID:             "evt_cap",
		Title:           "Policy Talk",
		Slug:            "policy-talk",
		Date:            time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		MaxParticipants: intPtr(1),
	}
	if err := f.store.InsertEvent(context.Background(), ev); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}
	seedForm(t, f.store, "evt_cap", nil)

	if _, err := f.submit("evt_cap", "Alice", "alice@example.com", anon); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := f.submit("evt_cap", "Bob", "bob@example.com", anon)
	wantErr(t, err, ErrLimitReached)
}

func TestSubmitDeadlineBoundary(t *testing.T) {
	f := newRegistrationFixture(t)
	deadline := time.Date(2025, 5, 10, 23, 59, 59, 0, time.UTC)
	seedEvent(t, f.store, "evt_1", "Deadline Talk")
	seedForm(t, f.store, "evt_1", func(form *models.RegistrationForm) { form.RegistrationDeadline = &deadline })

	f.svc.now = func() time.Time { return deadline }
	if _, err := f.svc.Submit(context.Background(), "evt_1", SubmissionInput{Name: "On", Email: "on@x.io", Phone: "1"}, anon); err != nil {
		t.Fatalf("submit at deadline: %v", err)
	}

	f.svc.now = func() time.Time { return deadline.Add(time.Nanosecond) }
	_, err := f.svc.Submit(context.Background(), "evt_1", SubmissionInput{Name: "Late", Email: "late@x.io", Phone: "1"}, anon)
	wantErr(t, err, ErrDeadlinePassed)
}

func TestSubmitCheckOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("no form", func(t *testing.T) {
		f := newRegistrationFixture(t)
		seedEvent(t, f.store, "evt_1", "E")
		_, err := f.submit("evt_1", "", "", anon)
		wantErr(t, err, ErrFormNotFound)
	})

	t.Run("inactive form", func(t *testing.T) {
		f := newRegistrationFixture(t)
		seedEvent(t, f.store, "evt_1", "E")
		seedForm(t, f.store, "evt_1", func(form *models.RegistrationForm) { form.IsActive = false })
		_, err := f.submit("evt_1", "A", "a@x.io", anon)
		wantErr(t, err, ErrFormNotFound)
	})

	t.Run("form without event", func(t *testing.T) {
		f := newRegistrationFixture(t)
		seedForm(t, f.store, "evt_gone", nil)
		_, err := f.submit("evt_gone", "A", "a@x.io", anon)
		wantErr(t, err, ErrEventNotFound)
	})

	t.Run("deadline before validation", func(t *testing.T) {
		f := newRegistrationFixture(t)
		past := f.clock.t.Add(-time.Hour)
		seedEvent(t, f.store, "evt_1", "E")
		seedForm(t, f.store, "evt_1", func(form *models.RegistrationForm) { form.RegistrationDeadline = &past })
		_, err := f.submit("evt_1", "", "not-an-email", anon)
		wantErr(t, err, ErrDeadlinePassed)
	})

	t.Run("duplicate before limit", func(t *testing.T) {
		f := newRegistrationFixture(t)
		seedEvent(t, f.store, "evt_1", "E")
		seedForm(t, f.store, "evt_1", func(form *models.RegistrationForm) { form.MaxRegistrations = intPtr(1) })
		if _, err := f.submit("evt_1", "A", "a@x.io", anon); err != nil {
			t.Fatal(err)
		}
		_, err := f.submit("evt_1", "A", "a@x.io", anon)
		wantErr(t, err, ErrAlreadyRegistered)
	})

	t.Run("limit before validation", func(t *testing.T) {
		f := newRegistrationFixture(t)
		seedEvent(t, f.store, "evt_1", "E")
		seedForm(t, f.store, "evt_1", func(form *models.RegistrationForm) { form.MaxRegistrations = intPtr(1) })
		if _, err := f.submit("evt_1", "A", "a@x.io", anon); err != nil {
			t.Fatal(err)
		}
		_, err := f.svc.Submit(ctx, "evt_1", SubmissionInput{Email: "b@x.io"}, anon)
		wantErr(t, err, ErrLimitReached)
	})

	t.Run("validation last", func(t *testing.T) {
		f := newRegistrationFixture(t)
		seedEvent(t, f.store, "evt_1", "E")
		seedForm(t, f.store, "evt_1", nil)
		_, err := f.svc.Submit(ctx, "evt_1", SubmissionInput{Name: "A", Email: "a@x.io"}, anon)
		wantValidation(t, err, "phone is required")
	})
}

func TestSubmitRequiredSingleSelect(t *testing.T) {
	f := newRegistrationFixture(t)
	seedEvent(t, f.store, "evt_1", "E")
	seedForm(t, f.store, "evt_1", func(form *models.RegistrationForm) {
		form.CustomFields = []models.CustomField{
			{FieldID: "diet", Label: "Diet", Type: models.FieldRadio, Options: []string{"Meat", "Veg"}, Required: true},
			{FieldID: "extras", Label: "Extras", Type: models.FieldCheckbox, Options: []string{"Shirt", "Sticker"}},
		}
	})
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "evt_1", SubmissionInput{Name: "A", Email: "a@x.io", Phone: "1"}, anon)
	wantValidation(t, err, "required field missing: Diet")

	res, err := f.svc.Submit(ctx, "evt_1", SubmissionInput{
		Name: "A", Email: "a@x.io", Phone: "1",
		Responses: []models.CustomResponse{
			{FieldID: "extras", Value: models.ListValue("Shirt", "Sticker")},
			{FieldID: "diet", Label: "whatever", Value: models.TextValue("Veg")},
		},
	}, anon)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	got := res.Registration.CustomResponses
	if len(got) != 2 || got[0].FieldID != "diet" || got[0].Label != "Diet" {
		t.Fatalf("responses = %+v", got)
	}
	if got[1].Value.String() != "Shirt; Sticker" {
		t.Errorf("checkbox = %q", got[1].Value.String())
	}
}

func TestSubmitNotifierFailureDoesNotFailSubmission(t *testing.T) {
	f := newRegistrationFixture(t)
	f.notifier.err = errors.New("smtp down")
	seedEvent(t, f.store, "evt_1", "E")
	seedForm(t, f.store, "evt_1", nil)

	if _, err := f.submit("evt_1", "A", "a@x.io", anon); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(f.notifier.calls) != 1 {
		t.Fatalf("notifier calls = %d", len(f.notifier.calls))
	}
}

func TestSubmitConcurrentNeverExceedsCapacity(t *testing.T) {
	store := newTestStore(t)
	seedEvent(t, store, "evt_1", "Crowded")
	seedForm(t, store, "evt_1", func(form *models.RegistrationForm) { form.MaxRegistrations = intPtr(3) })
	svc := NewRegistrationService(store, nil, RegistrationOptions{})

	const requests = 30
	var ok, full int32
	var wg sync.WaitGroup
	wg.Add(requests)
	for i := 0; i < requests; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), "evt_1",
				SubmissionInput{Name: "P", Email: fmt.Sprintf("p%d@x.io", i), Phone: "1"}, anon)
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, ErrLimitReached):
				atomic.AddInt32(&full, 1)
			default:
				t.Errorf("submit %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if ok != 3 || full != requests-3 {
		t.Fatalf("ok = %d, full = %d", ok, full)
	}
	if n, _ := store.CountRegistrations(context.Background(), "evt_1"); n != 3 {
		t.Fatalf("stored = %d, want 3", n)
	}
}

func TestCancelOwnNonOwnerLooksLikeMissing(t *testing.T) {
	f := newRegistrationFixture(t)
	seedEvent(t, f.store, "evt_1", "E")
	seedForm(t, f.store, "evt_1", nil)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, "evt_1", SubmissionInput{Name: "A", Email: "a@x.io", Phone: "1"}, member)
	if err != nil {
		t.Fatal(err)
	}
	uid := res.Registration.UID

	stranger := models.Caller{UID: "usr_other", Role: models.RoleMember}
	_, errStranger := f.svc.CancelOwn(ctx, uid, stranger)
	_, errMissing := f.svc.CancelOwn(ctx, "reg_missing", stranger)
	wantErr(t, errStranger, ErrRegistrationNotFound)
	wantErr(t, errMissing, ErrRegistrationNotFound)
	if errStranger.Error() != errMissing.Error() {
		t.Errorf("messages differ: %q vs %q", errStranger, errMissing)
	}

	_, err = f.svc.CancelOwn(ctx, uid, anon)
	wantErr(t, err, ErrUnauthorized)

	cancelled, err := f.svc.CancelOwn(ctx, uid, member)
	if err != nil {
		t.Fatalf("CancelOwn: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Fatalf("status = %q", cancelled.Status)
	}
	// cancelling again is accepted
	if _, err := f.svc.CancelOwn(ctx, uid, member); err != nil {
		t.Fatalf("second CancelOwn: %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newRegistrationFixture(t)
	seedEvent(t, f.store, "evt_1", "E")
	seedForm(t, f.store, "evt_1", nil)
	ctx := context.Background()
	res, err := f.submit("evt_1", "A", "a@x.io", anon)
	if err != nil {
		t.Fatal(err)
	}
	uid := res.Registration.UID

	_, err = f.svc.UpdateStatus(ctx, uid, "confirmed", member)
	wantErr(t, err, ErrForbidden)
	_, err = f.svc.UpdateStatus(ctx, uid, "confirmed", anon)
	wantErr(t, err, ErrUnauthorized)
	_, err = f.svc.UpdateStatus(ctx, uid, "approved", admin)
	wantErr(t, err, ErrInvalidStatus)
	_, err = f.svc.UpdateStatus(ctx, "reg_missing", "confirmed", admin)
	wantErr(t, err, ErrRegistrationNotFound)

	for _, st := range []string{"confirmed", "cancelled", "pending", "cancelled", "confirmed"} {
		reg, err := f.svc.UpdateStatus(ctx, uid, st, admin)
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", st, err)
		}
		if string(reg.Status) != st {
			t.Fatalf("status = %q, want %q", reg.Status, st)
		}
	}

	got, err := f.svc.Get(ctx, uid, admin)
	if err != nil || got.Status != models.StatusConfirmed {
		t.Fatalf("Get = %+v, %v", got, err)
	}
}

func TestDeleteRegistration(t *testing.T) {
	f := newRegistrationFixture(t)
	seedEvent(t, f.store, "evt_1", "E")
	seedForm(t, f.store, "evt_1", nil)
	ctx := context.Background()
	res, err := f.submit("evt_1", "A", "a@x.io", anon)
	if err != nil {
		t.Fatal(err)
	}

	wantErr(t, f.svc.Delete(ctx, res.Registration.UID, member), ErrForbidden)
	if err := f.svc.Delete(ctx, res.Registration.UID, admin); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	wantErr(t, f.svc.Delete(ctx, res.Registration.UID, admin), ErrRegistrationNotFound)
	_, err = f.svc.Get(ctx, res.Registration.UID, admin)
	wantErr(t, err, ErrRegistrationNotFound)
}

func TestListForFormNewestFirst(t *testing.T) {
	f := newRegistrationFixture(t)
	seedEvent(t, f.store, "evt_1", "E")
	form := seedForm(t, f.store, "evt_1", nil)

	for _, email := range []string{"first@x.io", "second@x.io", "third@x.io"} {
		if _, err := f.submit("evt_1", "P", email, anon); err != nil {
			t.Fatal(err)
		}
	}
	list, err := f.svc.ListForForm(context.Background(), form.UID, admin)
	if err != nil {
		t.Fatalf("ListForForm: %v", err)
	}
	if len(list) != 3 || list[0].Email != "third@x.io" || list[2].Email != "first@x.io" {
		t.Fatalf("order = %v", []string{list[0].Email, list[1].Email, list[2].Email})
	}
	if _, err := f.svc.ListForForm(context.Background(), form.UID, member); !errors.Is(err, ErrForbidden) {
		t.Errorf("member ListForForm err = %v", err)
	}
}

func TestExportEmptyEvent(t *testing.T) {
	f := newRegistrationFixture(t)
	_, err := f.svc.Export(context.Background(), "evt_none", admin)
	wantErr(t, err, ErrNoRegistrations)
}

func TestExportOldestFirst(t *testing.T) {
	f := newRegistrationFixture(t)
	seedEvent(t, f.store, "evt_1", "E")
	seedForm(t, f.store, "evt_1", nil)
	for _, email := range []string{"first@x.io", "second@x.io"} {
		if _, err := f.submit("evt_1", "P", email, anon); err != nil {
			t.Fatal(err)
		}
	}

	out, err := f.svc.Export(context.Background(), "evt_1", admin)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	rows := parseExport(t, out)
	if len(rows) != 3 || rows[1][2] != "first@x.io" || rows[2][2] != "second@x.io" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestExportUsesConfiguredTimeLayout(t *testing.T) {
	f := newRegistrationFixture(t)
	f.svc.opts.ExportTimeLayout = ExportTimeZhTW
	seedEvent(t, f.store, "evt_1", "E")
	seedForm(t, f.store, "evt_1", nil)
	if _, err := f.submit("evt_1", "P", "p@x.io", anon); err != nil {
		t.Fatal(err)
	}

	out, err := f.svc.Export(context.Background(), "evt_1", admin)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got := parseExport(t, out)[1][0]; got != "2025/5/1 下午12:00:01" {
		t.Fatalf("submitted at = %q", got)
	}
}
