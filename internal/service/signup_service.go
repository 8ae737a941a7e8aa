package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/launchlist/waitlist-service/internal/domain"
	"github.com/launchlist/waitlist-service/internal/events"
	"github.com/launchlist/waitlist-service/internal/repository"
)

// SubmitSignupInput is the raw signup form as received from the client.
type SubmitSignupInput struct {
	Email    string
	Source   *string
	Referrer *string
}

// SignupService accepts waitlist entries and serves the public counter.
type SignupService struct {
	signups        repository.SignupRepository
	dispatcher     events.Dispatcher
	logger         *zap.Logger
	successMessage string
}

// NewSignupService builds the service. A nil dispatcher disables events.
func NewSignupService(signups repository.SignupRepository, dispatcher events.Dispatcher, logger *zap.Logger, successMessage string) *SignupService {
	if dispatcher == nil {
		dispatcher = events.NewNoopDispatcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignupService{
		signups:        signups,
		dispatcher:     dispatcher,
		logger:         logger,
		successMessage: successMessage,
	}
}

// Submit validates and records a signup. Uniqueness is left to the store so that
// concurrent submissions of one address produce exactly one record.
func (s *SignupService) Submit(ctx context.Context, input SubmitSignupInput) (*domain.SignupConfirmation, error) {
	email := domain.NormalizeEmail(input.Email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	record := &domain.SignupRecord{
		Email:    email,
		Source:   domain.NormalizeAttribution(input.Source, domain.MaxSourceLength),
		Referrer: domain.NormalizeAttribution(input.Referrer, domain.MaxReferrerLength),
	}

	if err := s.signups.Create(ctx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicateSignup) {
			s.logger.Info("duplicate signup rejected", zap.String("source", record.SourceLabel()))
			return nil, domain.ErrDuplicateSignup
		}
		s.logger.Warn("signup write failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrSignupUnavailable, err)
	}

	event := events.NewEvent(events.EventSignupCreated, events.SignupCreatedPayload{
		SignupID:  record.ID,
		Source:    record.SourceLabel(),
		HasRef:    record.Referrer != nil,
		CreatedAt: record.CreatedAt,
	})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("signup event not delivered", zap.String("signup_id", record.ID), zap.Error(err))
	}

	return &domain.SignupConfirmation{Message: s.successMessage, Record: record}, nil
}

// Count returns the total number of signups for the public counter.
func (s *SignupService) Count(ctx context.Context) (int64, error) {
	total, err := s.signups.Count(ctx)
	if err != nil {
		s.logger.Warn("signup count failed", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", domain.ErrCountUnavailable, err)
	}
	return total, nil
}
