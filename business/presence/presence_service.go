package presence

import (
	"context"
	"fmt"
	"time"

	"cosound/domain"
	"cosound/pkg/logger"

	"github.com/google/uuid"
)

// ---- Repository interfaces ----

type SessionRepository interface {
	Create(ctx context.Context, session *domain.PresenceSession) error
	// DeactivateActive marks every active session of the user inactive.
	// No-op when none exist.
	DeactivateActive(ctx context.Context, userID uint) error
	// ActiveUserIDs returns users with status = active AND expires_at > now.
	ActiveUserIDs(ctx context.Context, now time.Time) ([]uint, error)
}

type UserRepository interface {
	Exists(ctx context.Context, userID uint) (bool, error)
}

// ---- Usecase / Service ----

// PresenceService tracks who currently counts toward the collective. Expiry
// is enforced purely at read time: an expired session is excluded from
// ActiveUserIDs, never proactively deleted.
type PresenceService struct {
	sessionRepo   SessionRepository
	userRepo      UserRepository
	defaultWindow time.Duration
}

func NewPresenceService(
	sessionRepo SessionRepository,
	userRepo UserRepository,
	defaultWindow time.Duration,
) *PresenceService {
	if defaultWindow <= 0 {
		defaultWindow = time.Hour
	}
	return &PresenceService{
		sessionRepo:   sessionRepo,
		userRepo:      userRepo,
		defaultWindow: defaultWindow,
	}
}

// CheckIn opens a fresh session for the user, deactivating any prior active
// one so at most one active session per user exists. window <= 0 uses the
// default. The proximity collaborator passes its own shorter window; the
// engine treats both uniformly.
func (s *PresenceService) CheckIn(ctx context.Context, userID uint, window time.Duration) (domain.PresenceSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.PresenceSession{}, fmt.Errorf("context error: %w", err)
	}

	ok, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return domain.PresenceSession{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if !ok {
		return domain.PresenceSession{}, domain.ErrUnknownUser
	}

	if window <= 0 {
		window = s.defaultWindow
	}

	if err := s.sessionRepo.DeactivateActive(ctx, userID); err != nil {
		return domain.PresenceSession{}, fmt.Errorf("failed to deactivate prior session: %w", err)
	}

	now := time.Now()
	session := domain.PresenceSession{
		ID:        uuid.New(),
		UserID:    userID,
		StartedAt: now,
		ExpiresAt: now.Add(window),
		Status:    domain.SessionActive,
	}

	if err := s.sessionRepo.Create(ctx, &session); err != nil {
		return domain.PresenceSession{}, fmt.Errorf("failed to create session: %w", err)
	}

	logger.Debug("presence_check_in",
		"user_id", userID,
		"session_id", session.ID,
		"expires_at", session.ExpiresAt,
	)

	return session, nil
}

// CheckOut marks the active session inactive. Idempotent no-op when none.
func (s *PresenceService) CheckOut(ctx context.Context, userID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.sessionRepo.DeactivateActive(ctx, userID); err != nil {
		return fmt.Errorf("failed to check out: %w", err)
	}

	return nil
}

// ListActive returns every user checked in within their window. Pure read.
func (s *PresenceService) ListActive(ctx context.Context) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	ids, err := s.sessionRepo.ActiveUserIDs(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	return ids, nil
}
