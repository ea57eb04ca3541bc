package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/edify/internal/infrastructure/security"
	"github.com/AtRiskMedia/edify/pkg/config"
)

// SysOpService handles operator authentication and runtime controls
type SysOpService struct {
	config      config.SysopConfig
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	now         func() time.Time
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewSysOpService creates a new sysop service with injected dependencies
func NewSysOpService(cfg config.SysopConfig, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SysOpService {
	return &SysOpService{config: cfg, logger: logger, perfTracker: perfTracker, now: time.Now}
}

// Enabled reports whether a sysop password has been configured.
func (s *SysOpService) Enabled() bool {
	return s.config.PasswordHash != "" && s.config.JWTSecret != ""
}

// Login exchanges the sysop password for a signed token.
func (s *SysOpService) Login(password string) (*LoginResult, error) {
	marker := s.perfTracker.StartOperation("auth:login")
	defer s.perfTracker.CompleteOperation(marker)

	if !s.Enabled() {
		marker.SetError(ErrSysopDisabled)
		return nil, ErrSysopDisabled
	}
	if !security.CheckPassword(s.config.PasswordHash, password) {
		marker.SetError(ErrInvalidCredentials)
		s.logger.Auth().Warn("Sysop login failed")
		return nil, ErrInvalidCredentials
	}

	token, expires, err := security.GenerateSysopToken(s.config.JWTSecret, s.config.TokenTTL, s.now())
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	s.logger.Auth().Info("Sysop login succeeded", "expiresAt", expires)
	return &LoginResult{Token: token, ExpiresAt: expires}, nil
}

// ValidateToken checks a bearer token.
func (s *SysOpService) ValidateToken(token string) error {
	if !s.Enabled() {
		return ErrSysopDisabled
	}
	if err := security.ValidateSysopToken(token, s.config.JWTSecret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return nil
}

// SetLogLevel changes a channel's level at runtime.
func (s *SysOpService) SetLogLevel(channel, level string) error {
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	if err := s.logger.SetChannelLevel(logging.Channel(channel), parsed); err != nil {
		return err
	}
	s.logger.Auth().Info("Log level changed by sysop", slog.String("channel", channel), slog.String("level", parsed.String()))
	return nil
}

// LogLevels returns the current level of every channel.
func (s *SysOpService) LogLevels() map[string]string {
	return s.logger.GetChannelLevels()
}

// Performance returns the tracker snapshot.
func (s *SysOpService) Performance() *performance.PerformanceSnapshot {
	return s.perfTracker.TakeSnapshot()
}
