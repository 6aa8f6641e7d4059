package quiz

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptKind string

const (
	AttemptKindSubject AttemptKind = "subject"
	AttemptKindCustom  AttemptKind = "custom"
)

// QuizAttempt is one scored pass through an ordered question list. SubjectID
// is nil for custom quizzes spanning several subjects.
type QuizAttempt struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	SubjectID    *uuid.UUID     `gorm:"type:uuid;index;column:subject_id" json:"subject_id,omitempty"`
	CustomQuizID *uuid.UUID     `gorm:"type:uuid;index;column:custom_quiz_id" json:"custom_quiz_id,omitempty"`
	Kind         AttemptKind    `gorm:"not null;column:kind;size:16" json:"kind"`
	QuestionIDs  datatypes.JSON `gorm:"column:question_ids" json:"question_ids"`
	Score        float64        `gorm:"not null;default:0;column:score;type:decimal(5,2)" json:"score"`
	Correct      int            `gorm:"not null;default:0;column:correct" json:"correct"`
	Total        int            `gorm:"not null;default:0;column:total" json:"total"`
	StartedAt    time.Time      `gorm:"not null;column:started_at;index" json:"started_at"`
	CompletedAt  *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`

	Subjects []QuizAttemptSubject `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"subjects,omitempty"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now().UTC()
	}
	return nil
}

func (a *QuizAttempt) SetQuestionIDs(ids []uuid.UUID) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	a.QuestionIDs = datatypes.JSON(raw)
	return nil
}

func (a *QuizAttempt) DecodeQuestionIDs() ([]uuid.UUID, error) {
	if len(a.QuestionIDs) == 0 {
		return []uuid.UUID{}, nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(a.QuestionIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// QuizAttemptSubject is the per-subject running score of an attempt.
type QuizAttemptSubject struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AttemptID uuid.UUID `gorm:"type:uuid;not null;column:attempt_id;uniqueIndex:uq_attempt_subject,priority:1" json:"attempt_id"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;column:subject_id;uniqueIndex:uq_attempt_subject,priority:2;index" json:"subject_id"`
	Score     int       `gorm:"not null;default:0;column:score" json:"score"`
	Total     int       `gorm:"not null;default:0;column:total" json:"total"`
}

func (QuizAttemptSubject) TableName() string { return "quiz_attempt_subject" }

func (s *QuizAttemptSubject) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
