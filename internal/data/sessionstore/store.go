package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/domain/quizsession"
)

var ErrNotFound = errors.New("quiz session not found")

const DefaultTTL = 24 * time.Hour

// Store keeps ephemeral quiz sessions. Answers live next to the session blob
// so that the first answer for a question can be claimed atomically.
type Store interface {
	Save(ctx context.Context, s *quizsession.Session) error
	// Update rewrites a session that still exists and returns ErrNotFound
	// once it was deleted or expired.
	Update(ctx context.Context, s *quizsession.Session) error
	// Get returns ErrNotFound when the session is missing, expired or owned by
	// another user. Answers are loaded into the returned session.
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*quizsession.Session, error)
	// ClaimAnswer stores a only if no answer exists for its question yet. It
	// returns the stored answer and whether this call stored it, or
	// ErrNotFound when the session is gone.
	ClaimAnswer(ctx context.Context, sessionID uuid.UUID, a quizsession.Answer) (quizsession.Answer, bool, error)
	// ReleaseAnswer drops a claimed answer whose side effects failed.
	ReleaseAnswer(ctx context.Context, sessionID, questionID uuid.UUID) error
	Delete(ctx context.Context, sessionID uuid.UUID) error

	SetActive(ctx context.Context, loginSessionID, sessionID uuid.UUID) error
	// GetActive returns uuid.Nil when no attempt is active.
	GetActive(ctx context.Context, loginSessionID uuid.UUID) (uuid.UUID, error)
	// ClearActive removes the pointer only while it still names sessionID.
	ClearActive(ctx context.Context, loginSessionID, sessionID uuid.UUID) error
}
