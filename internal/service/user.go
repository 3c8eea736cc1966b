package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stage-cue/internal/auth"
	"stage-cue/internal/domain"
	"stage-cue/internal/repository"

	"github.com/google/uuid"
)

// userService implements domain.UserService
type userService struct {
	userRepo    repository.UserStore
	adminEmails map[string]bool
}

// NewUserService creates a new UserService. adminEmails are matched case-insensitively.
func NewUserService(userRepo repository.UserStore, adminEmails []string) domain.UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &userService{
		userRepo:    userRepo,
		adminEmails: admins,
	}
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetOrCreateUser returns the account for a Google identity, creating it on first sign-in
func (s *userService) GetOrCreateUser(ctx context.Context, googleID, email string) (*domain.User, error) {
	if googleID == "" {
		return nil, fmt.Errorf("%w: google ID cannot be empty", domain.ErrInvalidInput)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", domain.ErrInvalidInput)
	}

	// Check if user already exists
	existingUser, err := s.userRepo.GetByGoogleID(ctx, googleID)
	if err == nil {
		return existingUser, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	role := domain.RoleUser
	if s.adminEmails[strings.ToLower(email)] {
		role = domain.RoleAdmin
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		GoogleID:  googleID,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// ListUsers returns every account for the admin panel
func (s *userService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ToggleRole moves the target one step through admin → program director → user → program director
func (s *userService) ToggleRole(ctx context.Context, actor *domain.User, targetID string) (*domain.User, error) {
	if actor == nil || !auth.HasPermission(actor.Role, auth.ActionAdminPanel) {
		return nil, domain.ErrPermissionDenied
	}

	target, err := s.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	target.Role = auth.NextRole(target.Role)
	target.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.UpdateRole(ctx, target.ID, target.Role, target.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	return target, nil
}
