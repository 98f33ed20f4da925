package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"orgsite-backend/internal/models"
)

func newTestFormService(t *testing.T) (*FormService, *clock) {
	t.Helper()
	store := newTestStore(t)
	seedEvent(t, store, "evt_1", "Policy Talk")

	svc := NewFormService(store)
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc.now = c.now
	n := 0
	svc.newUID = func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%02d", prefix, n)
	}
	return svc, c
}

func TestCreateForm(t *testing.T) {
	svc, _ := newTestFormService(t)
	ctx := context.Background()

	form, err := svc.Create(ctx, FormInput{
		EventUID: "evt_1",
		CustomFields: []models.CustomField{
			{Label: " Diet ", Type: models.FieldRadio, Options: []string{" Meat ", "", "Veg"}, Required: true},
			{FieldID: "note", Label: "Note", Options: []string{"ignored"}},
		},
		MaxRegistrations: intPtr(30),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !form.IsActive {
		t.Error("new form should be active")
	}
	if form.ConfirmationMessage != models.DefaultConfirmationMessage {
		t.Errorf("confirmation = %q", form.ConfirmationMessage)
	}
	diet := form.CustomFields[0]
	if diet.FieldID == "" || diet.Label != "Diet" || len(diet.Options) != 2 || diet.Options[0] != "Meat" {
		t.Errorf("diet field = %+v", diet)
	}
	note := form.CustomFields[1]
	if note.Type != models.FieldText || note.Options != nil || note.FieldID != "note" {
		t.Errorf("note field = %+v", note)
	}

	_, err = svc.Create(ctx, FormInput{EventUID: "evt_1"})
	wantErr(t, err, ErrFormExists)

	_, err = svc.Create(ctx, FormInput{EventUID: "evt_missing"})
	wantErr(t, err, ErrEventNotFound)

	active, err := svc.ActiveForEvent(ctx, "evt_1")
	if err != nil || active.UID != form.UID {
		t.Fatalf("ActiveForEvent = %+v, %v", active, err)
	}
}

func TestCreateFormRejectsBadFields(t *testing.T) {
	cases := []struct {
		name   string
		fields []models.CustomField
		reason string
	}{
		{"blank label", []models.CustomField{{Label: " "}}, "field label is required"},
		{"unknown type", []models.CustomField{{Label: "X", Type: "date"}}, "unknown field type: date"},
		{"select without options", []models.CustomField{{Label: "Track", Type: models.FieldSelect}}, "options are required for field: Track"},
		{"checkbox with blank options", []models.CustomField{{Label: "Days", Type: models.FieldCheckbox, Options: []string{" "}}}, "options are required for field: Days"},
		{"duplicate ids", []models.CustomField{{FieldID: "a", Label: "A"}, {FieldID: "a", Label: "B"}}, "duplicate field id: a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestFormService(t)
			_, err := svc.Create(context.Background(), FormInput{EventUID: "evt_1", CustomFields: tc.fields})
			wantValidation(t, err, tc.reason)
		})
	}
}

func TestUpdateFormIsPartial(t *testing.T) {
	svc, c := newTestFormService(t)
	ctx := context.Background()
	deadline := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	form, err := svc.Create(ctx, FormInput{
		EventUID:             "evt_1",
		CustomFields:         []models.CustomField{{FieldID: "a", Label: "A"}},
		MaxRegistrations:     intPtr(10),
		RegistrationDeadline: &deadline,
		ConfirmationMessage:  "Thanks",
	})
	if err != nil {
		t.Fatal(err)
	}

	c.advance(time.Hour)
	msg := "Updated"
	updated, err := svc.Update(ctx, form.UID, FormUpdate{ConfirmationMessage: &msg})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ConfirmationMessage != "Updated" || *updated.MaxRegistrations != 10 || len(updated.CustomFields) != 1 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.EventUID != "evt_1" || !updated.UpdatedAt.Equal(c.t) {
		t.Errorf("eventUid/updatedAt = %s/%v", updated.EventUID, updated.UpdatedAt)
	}

	updated, err = svc.Update(ctx, form.UID, FormUpdate{MaxRegistrations: intPtr(0), ClearDeadline: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.MaxRegistrations != nil || updated.RegistrationDeadline != nil {
		t.Errorf("limit/deadline not cleared: %+v", updated)
	}

	stored, err := svc.Get(ctx, form.UID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.MaxRegistrations != nil || stored.ConfirmationMessage != "Updated" {
		t.Errorf("stored = %+v", stored)
	}

	_, err = svc.Update(ctx, "form_missing", FormUpdate{})
	wantErr(t, err, ErrFormMissing)
}

func TestToggleAndDeleteForm(t *testing.T) {
	svc, _ := newTestFormService(t)
	ctx := context.Background()
	form, err := svc.Create(ctx, FormInput{EventUID: "evt_1"})
	if err != nil {
		t.Fatal(err)
	}

	toggled, err := svc.Toggle(ctx, form.UID)
	if err != nil || toggled.IsActive {
		t.Fatalf("Toggle = %+v, %v", toggled, err)
	}
	_, err = svc.ActiveForEvent(ctx, "evt_1")
	wantErr(t, err, ErrFormNotFound)

	toggled, err = svc.Toggle(ctx, form.UID)
	if err != nil || !toggled.IsActive {
		t.Fatalf("Toggle back = %+v, %v", toggled, err)
	}

	forms, err := svc.List(ctx)
	if err != nil || len(forms) != 1 {
		t.Fatalf("List = %v, %v", forms, err)
	}

	if err := svc.Delete(ctx, form.UID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	wantErr(t, svc.Delete(ctx, form.UID), ErrFormMissing)
	_, err = svc.Get(ctx, form.UID)
	wantErr(t, err, ErrFormMissing)
}
