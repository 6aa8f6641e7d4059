package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/domain/content"
)

// UserQuestionStatus is the running answer history of one user on one
// question. LastWasCorrect is nil until the first checked answer and then
// reflects only the most recent attempt.
type UserQuestionStatus struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID         `gorm:"type:uuid;not null;column:user_id;uniqueIndex:uq_user_question,priority:1" json:"user_id"`
	QuestionID     uuid.UUID         `gorm:"type:uuid;not null;column:question_id;uniqueIndex:uq_user_question,priority:2;index" json:"question_id"`
	Question       *content.Question `gorm:"foreignKey:QuestionID;references:ID;constraint:OnDelete:CASCADE" json:"question,omitempty"`
	TimesSeen      int               `gorm:"not null;default:0;column:times_seen" json:"times_seen"`
	TimesCorrect   int               `gorm:"not null;default:0;column:times_correct" json:"times_correct"`
	LastAnswer     string            `gorm:"column:last_answer;size:100" json:"last_answer"`
	LastWasCorrect *bool             `gorm:"column:last_was_correct" json:"last_was_correct"`
	LastSeenAt     time.Time         `gorm:"column:last_seen_at" json:"last_seen_at"`
}

func (UserQuestionStatus) TableName() string { return "user_question_status" }

func (s *UserQuestionStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Answered reports whether at least one answer was checked.
func (s *UserQuestionStatus) Answered() bool {
	return s != nil && s.LastWasCorrect != nil
}

// Label renders the sidebar status of the question.
func (s *UserQuestionStatus) Label() string {
	switch {
	case !s.Answered():
		return StatusUnanswered
	case *s.LastWasCorrect:
		return StatusCorrect
	default:
		return StatusIncorrect
	}
}

const (
	StatusCorrect    = "correct"
	StatusIncorrect  = "incorrect"
	StatusUnanswered = "unanswered"
)
