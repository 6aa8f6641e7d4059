package quizsession

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the walk-through state of a quiz session.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusAnswered   Status = "answered"
	StatusCompleted  Status = "completed"
)

var (
	ErrEmpty                = errors.New("quiz session has no questions")
	ErrQuestionNotInSession = errors.New("question is not part of this quiz")
	ErrCompleted            = errors.New("quiz session already completed")
)

// Answer is the checked answer of one question within one attempt.
type Answer struct {
	QuestionID uuid.UUID `json:"question_id"`
	SubjectID  uuid.UUID `json:"subject_id"`
	Selected   string    `json:"selected"`
	IsCorrect  bool      `json:"is_correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Session is the ephemeral state of one attempt. Its ID is the id of the
// persisted quiz_attempt row. Answers are kept out of the serialized blob;
// the session store keeps them in a separate per-question structure so that
// claiming an answer is atomic.
type Session struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	LoginSessionID uuid.UUID   `json:"login_session_id"`
	Kind           string      `json:"kind"`
	SubjectID      *uuid.UUID  `json:"subject_id,omitempty"`
	CustomQuizID   *uuid.UUID  `json:"custom_quiz_id,omitempty"`
	QuestionIDs    []uuid.UUID `json:"question_ids"`
	Index          int         `json:"index"`
	Status         Status      `json:"status"`
	StartedAt      time.Time   `json:"started_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`

	Answers map[uuid.UUID]Answer `json:"-"`
}

// New creates a session positioned before the first question.
func New(id, userID, loginSessionID uuid.UUID, kind string, questionIDs []uuid.UUID, now time.Time) (*Session, error) {
	if len(questionIDs) == 0 {
		return nil, ErrEmpty
	}
	ids := make([]uuid.UUID, len(questionIDs))
	copy(ids, questionIDs)
	return &Session{
		ID:             id,
		UserID:         userID,
		LoginSessionID: loginSessionID,
		Kind:           kind,
		QuestionIDs:    ids,
		Index:          0,
		Status:         StatusNotStarted,
		StartedAt:      now,
		Answers:        map[uuid.UUID]Answer{},
	}, nil
}

func (s *Session) Current() uuid.UUID {
	if s.Index < 0 || s.Index >= len(s.QuestionIDs) {
		return uuid.Nil
	}
	return s.QuestionIDs[s.Index]
}

func (s *Session) PositionOf(questionID uuid.UUID) (int, bool) {
	for i, id := range s.QuestionIDs {
		if id == questionID {
			return i, true
		}
	}
	return -1, false
}

func (s *Session) IsLast() bool { return s.Index == len(s.QuestionIDs)-1 }

func (s *Session) IsAnswered(questionID uuid.UUID) (Answer, bool) {
	a, ok := s.Answers[questionID]
	return a, ok
}

// Open moves the cursor to questionID, or keeps the current position when
// questionID is uuid.Nil. Traversal does not have to be linear.
func (s *Session) Open(questionID uuid.UUID) error {
	if s.Status == StatusCompleted {
		return ErrCompleted
	}
	if questionID != uuid.Nil {
		pos, ok := s.PositionOf(questionID)
		if !ok {
			return ErrQuestionNotInSession
		}
		s.Index = pos
	}
	s.syncStatus()
	return nil
}

// RecordAnswer stores the first answer for a question. A repeated answer is a
// no-op that returns the stored answer and false.
func (s *Session) RecordAnswer(a Answer) (Answer, bool, error) {
	if s.Status == StatusCompleted {
		return Answer{}, false, ErrCompleted
	}
	pos, ok := s.PositionOf(a.QuestionID)
	if !ok {
		return Answer{}, false, ErrQuestionNotInSession
	}
	if s.Answers == nil {
		s.Answers = map[uuid.UUID]Answer{}
	}
	s.Index = pos
	if existing, done := s.Answers[a.QuestionID]; done {
		s.syncStatus()
		return existing, false, nil
	}
	s.Answers[a.QuestionID] = a
	s.Status = StatusAnswered
	return a, true, nil
}

// Next advances to the following question. It reports true when there was no
// following question and the session completed instead.
func (s *Session) Next(now time.Time) (bool, error) {
	if s.Status == StatusCompleted {
		return false, ErrCompleted
	}
	if s.Index+1 < len(s.QuestionIDs) {
		s.Index++
		s.syncStatus()
		return false, nil
	}
	s.complete(now)
	return true, nil
}

// Finish completes the session from any non-completed state.
func (s *Session) Finish(now time.Time) error {
	if s.Status == StatusCompleted {
		return ErrCompleted
	}
	s.complete(now)
	return nil
}

// Score counts correct answers against the full question list; unanswered
// questions count as not correct.
func (s *Session) Score() (correct, total int) {
	for _, a := range s.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	return correct, len(s.QuestionIDs)
}

// Percentage is the attempt score in percent, 0 for an empty list.
func (s *Session) Percentage() float64 {
	correct, total := s.Score()
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

func (s *Session) complete(now time.Time) {
	s.Status = StatusCompleted
	t := now
	s.CompletedAt = &t
}

func (s *Session) syncStatus() {
	if _, ok := s.Answers[s.Current()]; ok {
		s.Status = StatusAnswered
		return
	}
	s.Status = StatusInProgress
}
