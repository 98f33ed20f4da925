package models

import "time"

// FieldType discriminates the custom field variants a form can carry.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
)

const DefaultConfirmationMessage = "Thank you for registering! We will be in touch soon."

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldTextarea, FieldSelect, FieldRadio, FieldCheckbox:
		return true
	}
	return false
}

// HasOptions reports whether the type is answered by picking from Options.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldSelect, FieldRadio, FieldCheckbox:
		return true
	case FieldText, FieldTextarea:
		return false
	}
	return false
}

// ValueKind is the response shape expected for the field type.
func (t FieldType) ValueKind() ValueKind {
	switch t {
	case FieldCheckbox:
		return ValueList
	case FieldText, FieldTextarea, FieldSelect, FieldRadio:
		return ValueText
	}
	return ValueText
}

type CustomField struct {
	FieldID     string    `bson:"field_id" json:"fieldId"`
	Label       string    `bson:"label" json:"label"`
	Type        FieldType `bson:"type" json:"type"`
	Options     []string  `bson:"options,omitempty" json:"options,omitempty"`
	Required    bool      `bson:"required" json:"required"`
	Placeholder string    `bson:"placeholder,omitempty" json:"placeholder,omitempty"`
}

type RegistrationForm struct {
	UID                  string        `bson:"uid" json:"uid"`
	EventUID             string        `bson:"event_uid" json:"eventUid"`
	IsActive             bool          `bson:"is_active" json:"isActive"`
	CustomFields         []CustomField `bson:"custom_fields" json:"customFields"`
	MaxRegistrations     *int          `bson:"max_registrations,omitempty" json:"maxRegistrations,omitempty"`
	RegistrationDeadline *time.Time    `bson:"registration_deadline,omitempty" json:"registrationDeadline,omitempty"`
	ConfirmationMessage  string        `bson:"confirmation_message" json:"confirmationMessage"`

	CreatedAt *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// Field returns the custom field with the given id.
func (f *RegistrationForm) Field(fieldID string) (CustomField, bool) {
	for _, cf := range f.CustomFields {
		if cf.FieldID == fieldID {
			return cf, true
		}
	}
	return CustomField{}, false
}

// DeadlinePassed is true only strictly after the deadline; the deadline instant itself is open.
func (f *RegistrationForm) DeadlinePassed(now time.Time) bool {
	return f.RegistrationDeadline != nil && now.After(*f.RegistrationDeadline)
}
