package dto

import (
	"time"

	"orgsite-backend/internal/models"
)

type FormCreateDTO struct {
	EventUID             string               `json:"eventUid"`
	CustomFields         []models.CustomField `json:"customFields"`
	MaxRegistrations     *int                 `json:"maxRegistrations,omitempty"`
	RegistrationDeadline *time.Time           `json:"registrationDeadline,omitempty"`
	ConfirmationMessage  string               `json:"confirmationMessage,omitempty"`
	IsActive             *bool                `json:"isActive,omitempty"`
}

// Absent fields are left unchanged. maxRegistrations 0 removes the limit and an
// empty registrationDeadline removes the deadline.
type FormUpdateDTO struct {
	EventUID             string                `json:"eventUid,omitempty"`
	CustomFields         *[]models.CustomField `json:"customFields,omitempty"`
	MaxRegistrations     *int                  `json:"maxRegistrations,omitempty"`
	RegistrationDeadline *string               `json:"registrationDeadline,omitempty" example:"2025-05-10T23:59:59+08:00"`
	ConfirmationMessage  *string               `json:"confirmationMessage,omitempty"`
	IsActive             *bool                 `json:"isActive,omitempty"`
}

type FormResult struct {
	Message string                   `json:"message"`
	Form    *models.RegistrationForm `json:"form"`
}
