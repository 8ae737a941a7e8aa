package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/launchlist/waitlist-service/internal/auth"
	"github.com/launchlist/waitlist-service/internal/config"
	"github.com/launchlist/waitlist-service/internal/domain"
	"github.com/launchlist/waitlist-service/internal/events"
	"github.com/launchlist/waitlist-service/internal/repository"
)

// AdminAuthService guards the admin surface: login with attempt limiting,
// session authorization and logout.
type AdminAuthService struct {
	credentials *auth.CredentialChecker
	tokens      *auth.TokenManager
	attempts    repository.LoginAttemptRepository
	revocations repository.SessionRevocationRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	principal   string
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// AdminAuthDependencies encapsulates collaborators for the admin auth service.
type AdminAuthDependencies struct {
	Tokens      *auth.TokenManager
	Attempts    repository.LoginAttemptRepository
	Revocations repository.SessionRevocationRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewAdminAuthService builds the service.
func NewAdminAuthService(cfg config.Config, deps AdminAuthDependencies) *AdminAuthService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewNoopDispatcher()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminAuthService{
		credentials: auth.NewCredentialChecker(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.PasswordHash),
		tokens:      deps.Tokens,
		attempts:    deps.Attempts,
		revocations: deps.Revocations,
		dispatcher:  dispatcher,
		logger:      logger,
		principal:   cfg.Admin.Username,
		maxAttempts: cfg.RateLimit.LoginMaxAttempts,
		window:      cfg.RateLimit.LoginWindow(),
		now:         now,
	}
}

// Principal returns the admin identity sessions are issued to.
func (s *AdminAuthService) Principal() string {
	return s.principal
}

// SessionTTL returns the lifetime of issued sessions.
func (s *AdminAuthService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}

// Authenticate checks credentials for clientID and issues a session token. An
// attempt is reserved before the comparison, so a blocked client never reaches it.
func (s *AdminAuthService) Authenticate(ctx context.Context, username, password, clientID string) (*domain.AdminSession, string, error) {
	reservation, err := s.attempts.Reserve(ctx, clientID, s.maxAttempts, s.window)
	if err != nil {
		s.logger.Error("login attempt reservation failed", zap.String("client_id", clientID), zap.Error(err))
		return nil, "", fmt.Errorf("%w: %v", domain.ErrAuthUnavailable, err)
	}
	if !reservation.Allowed {
		s.logger.Warn("admin login blocked",
			zap.String("client_id", clientID),
			zap.Int("attempts", reservation.Count),
			zap.Duration("retry_after", reservation.RetryAfter))
		s.publish(ctx, events.EventAdminLoginBlocked, events.AdminAuthPayload{
			ClientID:   clientID,
			Attempts:   reservation.Count,
			RetryAfter: reservation.RetryAfter,
		})
		return nil, "", &domain.RateLimitError{RetryAfter: reservation.RetryAfter}
	}

	if !s.credentials.Check(username, password) {
		s.logger.Warn("admin login failed", zap.String("client_id", clientID), zap.Int("attempts", reservation.Count))
		s.publish(ctx, events.EventAdminLoginFailed, events.AdminAuthPayload{
			ClientID: clientID,
			Attempts: reservation.Count,
		})
		return nil, "", domain.ErrInvalidCredentials
	}

	if err := s.attempts.Reset(ctx, clientID); err != nil {
		s.logger.Warn("login attempt reset failed", zap.String("client_id", clientID), zap.Error(err))
	}

	token, session, err := s.tokens.Issue(s.principal)
	if err != nil {
		return nil, "", fmt.Errorf("issue session: %w", err)
	}

	s.logger.Info("admin login succeeded", zap.String("client_id", clientID), zap.String("session_id", session.ID))
	s.publish(ctx, events.EventAdminLoginSucceeded, events.AdminAuthPayload{
		ClientID:  clientID,
		SessionID: session.ID,
	})
	return session, token, nil
}

// Authorize resolves a presented token to a live session.
func (s *AdminAuthService) Authorize(ctx context.Context, token string) (*domain.AdminSession, error) {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	if session.Expired(s.now()) || session.Principal != s.principal {
		return nil, domain.ErrUnauthenticated
	}

	revoked, err := s.revocations.IsRevoked(ctx, session.ID)
	if err != nil {
		s.logger.Error("session revocation lookup failed", zap.String("session_id", session.ID), zap.Error(err))
		return nil, domain.ErrUnauthenticated
	}
	if revoked {
		return nil, domain.ErrUnauthenticated
	}
	return session, nil
}

// Logout revokes the session until it would have expired. Unreadable or expired
// tokens are ignored.
func (s *AdminAuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	session, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}

	remaining := session.Remaining(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, session.ID, remaining); err != nil {
		return fmt.Errorf("%w: revoke session: %v", domain.ErrAuthUnavailable, err)
	}

	s.logger.Info("admin logged out", zap.String("session_id", session.ID))
	s.publish(ctx, events.EventAdminLoggedOut, events.AdminAuthPayload{SessionID: session.ID})
	return nil
}

func (s *AdminAuthService) publish(ctx context.Context, eventType events.EventType, payload events.AdminAuthPayload) {
	if err := s.dispatcher.Publish(ctx, events.NewEvent(eventType, payload)); err != nil {
		s.logger.Warn("admin event not delivered", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
