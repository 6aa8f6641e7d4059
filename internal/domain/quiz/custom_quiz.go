package quiz

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/domain/content"
)

type CustomQuiz struct {
	ID        uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID            `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Title     string               `gorm:"not null;column:title;size:150" json:"title"`
	CreatedAt time.Time            `json:"created_at"`
	Questions []CustomQuizQuestion `gorm:"foreignKey:CustomQuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (CustomQuiz) TableName() string { return "custom_quiz" }

func (c *CustomQuiz) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// QuestionIDs returns the question ids ordered by Order.
func (c *CustomQuiz) QuestionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Questions))
	ordered := make([]CustomQuizQuestion, len(c.Questions))
	copy(ordered, c.Questions)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	for i, q := range ordered {
		ids[i] = q.QuestionID
	}
	return ids
}

type CustomQuizQuestion struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CustomQuizID uuid.UUID         `gorm:"type:uuid;not null;column:custom_quiz_id;uniqueIndex:uq_custom_quiz_question,priority:1" json:"custom_quiz_id"`
	QuestionID   uuid.UUID         `gorm:"type:uuid;not null;column:question_id;uniqueIndex:uq_custom_quiz_question,priority:2" json:"question_id"`
	Question     *content.Question `gorm:"foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	Order        int               `gorm:"not null;default:0;column:position" json:"order"`
}

func (CustomQuizQuestion) TableName() string { return "custom_quiz_question" }

func (c *CustomQuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
