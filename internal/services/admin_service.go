package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aklujeats/aklujeats/internal/db"
	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

// MinPasswordLength is the shortest accepted admin password
const MinPasswordLength = 8

// AdminService manages back-office accounts
type AdminService struct {
	db   db.Database
	cost int
	now  func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(database db.Database) *AdminService {
	return &AdminService{db: database, cost: bcrypt.DefaultCost, now: time.Now}
}

// CreateAdmin stores a new admin with a bcrypt hash of password
func (s *AdminService) CreateAdmin(ctx context.Context, username, password string) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", shared.ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", shared.ErrInvalidInput, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.db.CreateAdmin(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}

// Authenticate returns the admin for valid credentials and
// shared.ErrUnauthorized for an unknown user or wrong password
func (s *AdminService) Authenticate(ctx context.Context, username, password string) (*models.Admin, error) {
	admin, err := s.db.GetAdminByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, shared.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	return admin, nil
}
