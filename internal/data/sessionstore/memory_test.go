package sessionstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/domain/quizsession"
)

func newTestSession(t *testing.T, userID uuid.UUID) *quizsession.Session {
	t.Helper()
	s, err := quizsession.New(uuid.New(), userID, uuid.New(), "subject", []uuid.UUID{uuid.New(), uuid.New()}, time.Now())
	if err != nil {
		t.Fatalf("quizsession.New: %v", err)
	}
	return s
}

func TestMemoryStoreOwnership(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	owner := uuid.New()
	qs := newTestSession(t, owner)

	if err := store.Save(ctx, qs); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Get(ctx, owner, qs.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.QuestionIDs) != 2 || got.Status != quizsession.StatusNotStarted {
		t.Fatalf("round trip lost state: %+v", got)
	}
	if _, err := store.Get(ctx, uuid.New(), qs.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user must see ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, qs.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, owner, qs.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted session must be gone, got %v", err)
	}
}

func TestMemoryStoreClaimAnswerOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	owner := uuid.New()
	qs := newTestSession(t, owner)
	_ = store.Save(ctx, qs)
	q := qs.QuestionIDs[0]

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok, err := store.ClaimAnswer(ctx, qs.ID, quizsession.Answer{QuestionID: q, IsCorrect: i%2 == 0})
			if err != nil {
				t.Errorf("ClaimAnswer: %v", err)
				return
			}
			if ok {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if claimed != 1 {
		t.Fatalf("exactly one claim must win, got %d", claimed)
	}

	got, err := store.Get(ctx, owner, qs.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := got.Answers[q]; !ok || len(got.Answers) != 1 {
		t.Fatalf("answer not loaded: %+v", got.Answers)
	}

	if err := store.ReleaseAnswer(ctx, qs.ID, q); err != nil {
		t.Fatalf("ReleaseAnswer: %v", err)
	}
	if _, ok, _ := store.ClaimAnswer(ctx, qs.ID, quizsession.Answer{QuestionID: q}); !ok {
		t.Fatalf("released answer must be claimable again")
	}
}

func TestMemoryStoreActivePointer(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	login := uuid.New()
	first, second := uuid.New(), uuid.New()

	if id, err := store.GetActive(ctx, login); err != nil || id != uuid.Nil {
		t.Fatalf("empty pointer: id=%s err=%v", id, err)
	}
	_ = store.SetActive(ctx, login, first)
	_ = store.SetActive(ctx, login, second)
	if err := store.ClearActive(ctx, login, first); err != nil {
		t.Fatalf("ClearActive: %v", err)
	}
	if id, _ := store.GetActive(ctx, login); id != second {
		t.Fatalf("stale clear must not drop the newer pointer, got %s", id)
	}
	_ = store.ClearActive(ctx, login, second)
	if id, _ := store.GetActive(ctx, login); id != uuid.Nil {
		t.Fatalf("pointer should be cleared, got %s", id)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute).(*memoryStore)
	clock := time.Now()
	store.now = func() time.Time { return clock }

	owner := uuid.New()
	qs := newTestSession(t, owner)
	_ = store.Save(ctx, qs)

	clock = clock.Add(2 * time.Minute)
	if _, err := store.Get(ctx, owner, qs.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session must be gone, got %v", err)
	}
}

func TestMemoryStoreClaimNeedsLiveSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	qs := newTestSession(t, uuid.New())
	_ = store.Save(ctx, qs)
	_ = store.Delete(ctx, qs.ID)

	if _, _, err := store.ClaimAnswer(ctx, qs.ID, quizsession.Answer{QuestionID: qs.QuestionIDs[0]}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("claim on a deleted session: expected ErrNotFound, got %v", err)
	}
	if err := store.Update(ctx, qs); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update of a deleted session: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, qs.UserID, qs.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update must not bring the session back, got %v", err)
	}
}
