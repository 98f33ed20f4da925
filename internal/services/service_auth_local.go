package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"orgsite-backend/internal/models"
	"orgsite-backend/internal/repository"
	"orgsite-backend/internal/utils"
)

const minPasswordLength = 6

type RegisterInput struct {
	Username string
	Name     string
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	User  *models.User
}

// AuthService manages local accounts and issues the JWTs the middleware verifies.
type AuthService struct {
	users  repository.UserStore
	secret string
	ttl    time.Duration
	cost   int
	now    func() time.Time
	newUID func(prefix string) string
}

func NewAuthService(users repository.UserStore, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		secret: secret,
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    func() time.Time { return time.Now().UTC() },
		newUID: utils.NewUID,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.createUser(ctx, in, models.RoleMember)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if username == "" || name == "" || email == "" || in.Password == "" {
		return nil, invalid("username, name, email and password are required")
	}
	if !IsValidEmail(email) {
		return nil, invalid("a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, invalid("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.users.FindUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		UID:          s.newUID("usr"),
		Username:     username,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent signup
			if _, lookupErr := s.users.FindUserByEmail(ctx, email); lookupErr == nil {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// Login accepts either an email address or a username as identifier.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, invalid("email/username and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.FindUserByEmail(ctx, NormalizeEmail(identifier))
	} else {
		user, err = s.users.FindUserByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.secret, user.UID, user.Email, string(user.Role), s.now(), s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) Me(ctx context.Context, caller models.Caller) (*models.User, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindUserByUID(ctx, caller.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless the email is already taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, username, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.users.FindUserByEmail(ctx, NormalizeEmail(email)); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	user, err := s.createUser(ctx, RegisterInput{Username: username, Name: username, Email: email, Password: password}, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Printf("bootstrap admin %s created (%s)", user.Email, user.UID)
	return nil
}
