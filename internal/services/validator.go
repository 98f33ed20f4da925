package services

import (
	"regexp"
	"slices"
	"strings"

	"orgsite-backend/internal/models"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// IsValidEmail accepts the loose text@text.text shape.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && emailPattern.MatchString(email)
}

// NormalizeEmail is the form registrations and accounts are keyed by.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SubmissionInput is what a registrant sends for one event.
type SubmissionInput struct {
	Name        string
	Email       string
	Phone       string
	Nationality string
	School      string
	Department  string
	StudentID   string
	Responses   []models.CustomResponse
}

// ValidateSubmission returns the first violation as a *ValidationError, checking
// name, email, phone and then each custom field in form order.
func ValidateSubmission(in SubmissionInput, fields []models.CustomField) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if !IsValidEmail(in.Email) {
		return invalid("a valid email is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return invalid("phone is required")
	}

	answers := indexResponses(in.Responses)
	for _, f := range fields {
		v, ok := answers[f.FieldID]
		if !ok || v.Empty() {
			if f.Required {
				return invalid("required field missing: %s", f.Label)
			}
			continue
		}
		if !valueFits(f, v) {
			return invalid("invalid value for field: %s", f.Label)
		}
	}
	return nil
}

func indexResponses(responses []models.CustomResponse) map[string]models.ResponseValue {
	m := make(map[string]models.ResponseValue, len(responses))
	for _, r := range responses {
		m[r.FieldID] = r.Value
	}
	return m
}

func valueFits(f models.CustomField, v models.ResponseValue) bool {
	if v.Kind != f.Type.ValueKind() {
		return false
	}
	switch f.Type {
	case models.FieldSelect, models.FieldRadio:
		return slices.Contains(f.Options, strings.TrimSpace(v.Text))
	case models.FieldCheckbox:
		for _, item := range v.Items {
			if !slices.Contains(f.Options, item) {
				return false
			}
		}
		return true
	case models.FieldText, models.FieldTextarea:
		return true
	}
	return false
}

// normalizeResponses keeps answers to fields the form defines, in form order, with
// the field's current label. Unanswered optional fields are dropped.
func normalizeResponses(responses []models.CustomResponse, fields []models.CustomField) []models.CustomResponse {
	answers := indexResponses(responses)
	out := make([]models.CustomResponse, 0, len(fields))
	for _, f := range fields {
		v, ok := answers[f.FieldID]
		if !ok || v.Empty() {
			continue
		}
		if v.Kind == models.ValueText {
			v.Text = strings.TrimSpace(v.Text)
		}
		out = append(out, models.CustomResponse{FieldID: f.FieldID, Label: f.Label, Value: v})
	}
	return out
}
