// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package profiles

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/danielhkuo/lunchpick/db"
	"github.com/danielhkuo/lunchpick/models"
	"github.com/danielhkuo/lunchpick/schedule"
)

var (
	ErrMissingField = errors.New("first name and last name are required")
	ErrInvalidPhone = errors.New("phone number must be exactly 9 digits")
	ErrNotFound     = errors.New("profile not found")
)

var phonePattern = regexp.MustCompile(`^[0-9]{9}$`)

// ValidatePhone reports whether phone is exactly nine ASCII digits
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Service is the profile directory
type Service struct {
	store db.Store
	clock schedule.Clock
}

func NewService(store db.Store, clock schedule.Clock) *Service {
	return &Service{store: store, clock: clock}
}

func (s *Service) Get(ctx context.Context, userID string) (models.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

// Save creates the caller's profile or updates its names and phone.
// The admin flag cannot be set here; an existing flag is preserved.
func (s *Service) Save(ctx context.Context, userID string, req models.SaveProfileRequest) (models.Profile, error) {
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	phone := strings.TrimSpace(req.PhoneNumber)

	if first == "" || last == "" {
		return models.Profile{}, ErrMissingField
	}
	if !ValidatePhone(phone) {
		return models.Profile{}, ErrInvalidPhone
	}

	now := s.clock.Now()
	saved, err := s.store.SaveProfile(ctx, models.Profile{
		UserID:      userID,
		FirstName:   first,
		LastName:    last,
		PhoneNumber: phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	return saved, nil
}

// List returns every profile ordered by first name
func (s *Service) List(ctx context.Context) ([]models.Profile, error) {
	list, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return list, nil
}

// SetAdmin grants or revokes the admin flag of an existing profile.
// It is only reachable from the command line.
func (s *Service) SetAdmin(ctx context.Context, userID string, admin bool) (models.Profile, error) {
	err := s.store.SetAdmin(ctx, userID, admin, s.clock.Now())
	if errors.Is(err, db.ErrNotFound) {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to set admin flag: %w", err)
	}
	return s.Get(ctx, userID)
}

// IsAdmin reports the admin flag; users without a profile are not admins
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	p, err := s.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsAdmin, nil
}
