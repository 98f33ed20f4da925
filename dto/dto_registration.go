package dto

import "orgsite-backend/internal/models"

// Submitted by the public registration page
type RegistrationSubmitDTO struct {
	Name            string                  `json:"name"`
	Email           string                  `json:"email"`
	Phone           string                  `json:"phone"`
	Nationality     string                  `json:"nationality,omitempty"`
	School          string                  `json:"school,omitempty"`
	Department      string                  `json:"department,omitempty"`
	StudentID       string                  `json:"studentId,omitempty"`
	CustomResponses []models.CustomResponse `json:"customResponses,omitempty"`
}

type RegistrationSubmitResult struct {
	Message             string               `json:"message"`
	Registration        *models.Registration `json:"registration"`
	ConfirmationMessage string               `json:"confirmationMessage"`
}

type RegistrationStatusDTO struct {
	Status string `json:"status" example:"confirmed"`
}

type RegistrationResult struct {
	Message      string               `json:"message"`
	Registration *models.Registration `json:"registration"`
}
