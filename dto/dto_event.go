package dto

import "time"

type EventCreateDTO struct {
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description,omitempty"`
	Date            time.Time `json:"date"`
	Location        string    `json:"location,omitempty"`
	MaxParticipants *int      `json:"maxParticipants,omitempty"`
}
