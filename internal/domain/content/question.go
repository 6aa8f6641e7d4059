package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/normalization"
)

// Option names one of the four answer slots of a question.
type Option string

const (
	Option1 Option = "option1"
	Option2 Option = "option2"
	Option3 Option = "option3"
	Option4 Option = "option4"
)

var Options = []Option{Option1, Option2, Option3, Option4}

func (o Option) Valid() bool {
	switch o {
	case Option1, Option2, Option3, Option4:
		return true
	}
	return false
}

type Question struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code      *string   `gorm:"column:code;size:300" json:"code,omitempty"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;column:subject_id;uniqueIndex:uq_subject_normtext,priority:1" json:"subject_id"`
	Subject   *Subject  `gorm:"foreignKey:SubjectID;references:ID" json:"subject,omitempty"`

	Text string `gorm:"not null;column:text" json:"text"`
	// NormalizedTextKey is recomputed from Text on every save.
	NormalizedTextKey string `gorm:"not null;column:normalized_text_key;size:500;uniqueIndex:uq_subject_normtext,priority:2" json:"-"`

	Option1       string  `gorm:"not null;column:option1;size:250" json:"option1"`
	Option2       string  `gorm:"not null;column:option2;size:250" json:"option2"`
	Option3       string  `gorm:"not null;column:option3;size:250" json:"option3"`
	Option4       string  `gorm:"not null;column:option4;size:250" json:"option4"`
	CorrectOption Option  `gorm:"not null;column:correct_option;size:16" json:"correct_option"`
	Explanation   *string `gorm:"column:explanation" json:"explanation,omitempty"`

	ImageURL            *string `gorm:"column:image_url" json:"image_url,omitempty"`
	ExplanationImageURL *string `gorm:"column:explanation_image_url" json:"explanation_image_url,omitempty"`

	Images    []QuestionImage   `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	ChartData *PatientChartData `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"chart_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string { return "question" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (q *Question) BeforeSave(tx *gorm.DB) error {
	q.NormalizedTextKey = normalization.QuestionKey(q.Text)
	return nil
}

// IsCorrect reports whether selected names the correct option slot.
func (q *Question) IsCorrect(selected Option) bool {
	return q != nil && selected.Valid() && selected == q.CorrectOption
}

type QuestionImage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index;column:question_id" json:"question_id"`
	URL        string    `gorm:"not null;column:url" json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

func (QuestionImage) TableName() string { return "question_image" }

func (i *QuestionImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// PatientChartData holds the clinical scenario shown next to a question.
type PatientChartData struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:question_id" json:"question_id"`
	PatientDetails  *string   `gorm:"column:patient_details;size:255" json:"patient_details,omitempty"`
	ChiefComplaint  string    `gorm:"column:chief_complaint" json:"chief_complaint"`
	MedicalHistory  string    `gorm:"column:medical_history" json:"medical_history"`
	CurrentFindings string    `gorm:"column:current_findings" json:"current_findings"`
}

func (PatientChartData) TableName() string { return "patient_chart_data" }

func (p *PatientChartData) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
