package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type StaffService struct {
	repo StaffStore
	now  func() time.Time
	log  zerolog.Logger
}

func NewStaffService(repo StaffStore, log zerolog.Logger) *StaffService {
	return &StaffService{repo: repo, now: time.Now, log: log}
}

type CredentialsUpdate struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateCredentials changes a staff member's login. A new email is stored as
// already confirmed.
func (s *StaffService) UpdateCredentials(ctx context.Context, id uuid.UUID, in CredentialsUpdate) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" && in.Password == "" {
		return fmt.Errorf("%w: email or password is required", ErrInvalidInput)
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
		}
	}
	if in.Password != "" && len(in.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	if _, err := s.repo.GetStaff(ctx, id); err != nil {
		return err
	}

	var (
		emailPtr    *string
		confirmedAt *time.Time
		hashPtr     *string
	)
	if email != "" {
		now := s.now()
		emailPtr = &email
		confirmedAt = &now
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hash)
		hashPtr = &h
	}

	if err := s.repo.UpdateCredentials(ctx, id, emailPtr, confirmedAt, hashPtr); err != nil {
		s.log.Error().Err(err).Str("staff_id", id.String()).Msg("failed to update staff credentials")
		return err
	}
	s.log.Info().
		Str("staff_id", id.String()).
		Bool("email_changed", emailPtr != nil).
		Bool("password_changed", hashPtr != nil).
		Msg("staff credentials updated")
	return nil
}
