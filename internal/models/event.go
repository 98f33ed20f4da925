package models

import "time"

type Event struct {
	UID             string    `bson:"uid" json:"uid"`
	Title           string    `bson:"title" json:"title"`
	Slug            string    `bson:"slug" json:"slug"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	Date            time.Time `bson:"date" json:"date"`
	Location        string    `bson:"location,omitempty" json:"location,omitempty"`
	MaxParticipants *int      `bson:"max_participants,omitempty" json:"maxParticipants,omitempty"`

	CreatedAt *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}
