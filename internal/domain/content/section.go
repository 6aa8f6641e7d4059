package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExamType string

const (
	ExamTypeINBDE ExamType = "inbde"
	ExamTypeADAT  ExamType = "adat"
)

func (e ExamType) Valid() bool {
	return e == ExamTypeINBDE || e == ExamTypeADAT
}

type Section struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	ExamType  ExamType  `gorm:"not null;column:exam_type;size:10;index" json:"exam_type"`
	Subjects  []Subject `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"subjects,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Section) TableName() string { return "section" }

func (s *Section) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
