package sessionstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/domain/quizsession"
)

type memoryEntry struct {
	blob      []byte
	answers   map[uuid.UUID]quizsession.Answer
	expiresAt time.Time
}

type activeEntry struct {
	sessionID uuid.UUID
	expiresAt time.Time
}

// memoryStore is the single-process Store used when no Redis address is
// configured, and in tests.
type memoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[uuid.UUID]*memoryEntry
	active   map[uuid.UUID]activeEntry
}

func NewMemoryStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: map[uuid.UUID]*memoryEntry{},
		active:   map[uuid.UUID]activeEntry{},
	}
}

// entry returns the live entry for id; caller holds mu.
func (m *memoryStore) entry(id uuid.UUID) *memoryEntry {
	e, ok := m.sessions[id]
	if !ok {
		return nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.sessions, id)
		return nil
	}
	return e
}

func (m *memoryStore) Save(ctx context.Context, qs *quizsession.Session) error {
	raw, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(qs.ID)
	if e == nil {
		e = &memoryEntry{answers: map[uuid.UUID]quizsession.Answer{}}
		m.sessions[qs.ID] = e
	}
	e.blob = raw
	e.expiresAt = m.now().Add(m.ttl)
	return nil
}

func (m *memoryStore) Update(ctx context.Context, qs *quizsession.Session) error {
	raw, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(qs.ID)
	if e == nil || e.blob == nil {
		return ErrNotFound
	}
	e.blob = raw
	e.expiresAt = m.now().Add(m.ttl)
	return nil
}

func (m *memoryStore) Get(ctx context.Context, userID, sessionID uuid.UUID) (*quizsession.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(sessionID)
	if e == nil || e.blob == nil {
		return nil, ErrNotFound
	}
	var qs quizsession.Session
	if err := json.Unmarshal(e.blob, &qs); err != nil {
		return nil, err
	}
	if qs.UserID != userID {
		return nil, ErrNotFound
	}
	qs.Answers = make(map[uuid.UUID]quizsession.Answer, len(e.answers))
	for k, v := range e.answers {
		qs.Answers[k] = v
	}
	return &qs, nil
}

func (m *memoryStore) ClaimAnswer(ctx context.Context, sessionID uuid.UUID, a quizsession.Answer) (quizsession.Answer, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entry(sessionID)
	if e == nil || e.blob == nil {
		return quizsession.Answer{}, false, ErrNotFound
	}
	if prev, ok := e.answers[a.QuestionID]; ok {
		return prev, false, nil
	}
	e.answers[a.QuestionID] = a
	return a, true, nil
}

func (m *memoryStore) ReleaseAnswer(ctx context.Context, sessionID, questionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.entry(sessionID); e != nil {
		delete(e.answers, questionID)
	}
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *memoryStore) SetActive(ctx context.Context, loginSessionID, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[loginSessionID] = activeEntry{sessionID: sessionID, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *memoryStore) GetActive(ctx context.Context, loginSessionID uuid.UUID) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.active[loginSessionID]
	if !ok {
		return uuid.Nil, nil
	}
	if m.now().After(a.expiresAt) {
		delete(m.active, loginSessionID)
		return uuid.Nil, nil
	}
	return a.sessionID, nil
}

func (m *memoryStore) ClearActive(ctx context.Context, loginSessionID, sessionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.active[loginSessionID]; ok && a.sessionID == sessionID {
		delete(m.active, loginSessionID)
	}
	return nil
}
