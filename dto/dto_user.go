package dto

import "orgsite-backend/internal/models"

type UserRegisterDTO struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Email may also hold a username
type UserLoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserLoginResult struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}
