package models

import "time"

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type User struct {
	UID          string    `bson:"uid" json:"uid"`
	Username     string    `bson:"username" json:"username"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// Caller is the identity attached to a request; the zero value is an anonymous caller.
type Caller struct {
	UID  string
	Role Role
}

func (c Caller) Authenticated() bool { return c.UID != "" }

func (c Caller) IsAdmin() bool { return c.Authenticated() && c.Role == RoleAdmin }
