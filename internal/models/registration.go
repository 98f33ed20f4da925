package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

type ValueKind string

const (
	ValueText ValueKind = "text"
	ValueList ValueKind = "list"
)

// ResponseValue holds either a single string or a list of strings.
// On the wire it is a bare JSON string or a JSON array.
type ResponseValue struct {
	Kind  ValueKind `bson:"kind" json:"-"`
	Text  string    `bson:"text,omitempty" json:"-"`
	Items []string  `bson:"items,omitempty" json:"-"`
}

func TextValue(s string) ResponseValue { return ResponseValue{Kind: ValueText, Text: s} }

func ListValue(items ...string) ResponseValue {
	return ResponseValue{Kind: ValueList, Items: items}
}

// Empty reports whether the value carries no answer.
func (v ResponseValue) Empty() bool {
	switch v.Kind {
	case ValueList:
		return len(v.Items) == 0
	case ValueText:
		return strings.TrimSpace(v.Text) == ""
	}
	return true
}

// String renders the value as a single cell, joining list items with "; ".
func (v ResponseValue) String() string {
	if v.Kind == ValueList {
		return strings.Join(v.Items, "; ")
	}
	return v.Text
}

func (v ResponseValue) MarshalJSON() ([]byte, error) {
	if v.Kind == ValueList {
		items := v.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.Text)
}

func (v *ResponseValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ResponseValue{Kind: ValueText}
		return nil
	case len(data) > 0 && data[0] == '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("response value: %w", err)
		}
		*v = ResponseValue{Kind: ValueList, Items: items}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("response value: %w", err)
		}
		*v = ResponseValue{Kind: ValueText, Text: s}
		return nil
	}
	// numbers and booleans from loosely typed clients are kept as their literal text
	*v = ResponseValue{Kind: ValueText, Text: string(data)}
	return nil
}

type CustomResponse struct {
	FieldID string        `bson:"field_id" json:"fieldId"`
	Label   string        `bson:"label" json:"label"`
	Value   ResponseValue `bson:"value" json:"value"`
}

type Registration struct {
	UID      string  `bson:"uid" json:"uid"`
	FormUID  string  `bson:"form_uid" json:"formUid"`
	EventUID string  `bson:"event_uid" json:"eventUid"`
	UserUID  *string `bson:"user_uid" json:"userUid"`

	Name        string `bson:"name" json:"name"`
	Email       string `bson:"email" json:"email"`
	Phone       string `bson:"phone" json:"phone"`
	Nationality string `bson:"nationality" json:"nationality"`

	School     string `bson:"school,omitempty" json:"school,omitempty"`
	Department string `bson:"department,omitempty" json:"department,omitempty"`
	StudentID  string `bson:"student_id,omitempty" json:"studentId,omitempty"`

	CustomResponses []CustomResponse `bson:"custom_responses" json:"customResponses"`

	Status      Status     `bson:"status" json:"status"`
	SubmittedAt time.Time  `bson:"submitted_at" json:"submittedAt"`
	UpdatedAt   *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// OwnedBy reports whether the registration was submitted by the given user.
func (r *Registration) OwnedBy(userUID string) bool {
	return userUID != "" && r.UserUID != nil && *r.UserUID == userUID
}
