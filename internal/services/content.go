package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/data/dberr"
	"github.com/yungbote/dentest-backend/internal/data/repos"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/domain/content"
	"github.com/yungbote/dentest-backend/internal/normalization"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type ContentService interface {
	ListSections(ctx context.Context, examType string) ([]*types.Section, error)
	GetSectionWithSubjects(ctx context.Context, sectionID uuid.UUID) (*types.Section, error)
	ListSubjects(ctx context.Context, sectionID uuid.UUID) ([]*types.Subject, error)
	ListQuestionsBySubject(ctx context.Context, subjectID uuid.UUID) ([]*types.Question, error)

	EnsureSection(ctx context.Context, examType, name string) (*types.Section, error)
	EnsureSubject(ctx context.Context, sectionID uuid.UUID, name, description string) (*types.Subject, error)
	CreateQuestion(ctx context.Context, q *types.Question) (*types.Question, error)
	UpsertQuestion(ctx context.Context, q *types.Question) (*types.Question, error)
}

type contentService struct {
	db           *gorm.DB
	log          *logger.Logger
	sectionRepo  repos.SectionRepo
	subjectRepo  repos.SubjectRepo
	questionRepo repos.QuestionRepo
}

func NewContentService(
	db *gorm.DB,
	log *logger.Logger,
	sectionRepo repos.SectionRepo,
	subjectRepo repos.SubjectRepo,
	questionRepo repos.QuestionRepo,
) ContentService {
	return &contentService{
		db:           db,
		log:          log.With("service", "ContentService"),
		sectionRepo:  sectionRepo,
		subjectRepo:  subjectRepo,
		questionRepo: questionRepo,
	}
}

func parseExamType(raw string) (types.ExamType, error) {
	et := types.ExamType(normalization.ParseInputString(raw))
	if !et.Valid() {
		return "", invalid("invalid_exam_type", fmt.Sprintf("unknown exam type %q", raw), map[string]string{"exam_type": "must be one of inbde, adat"})
	}
	return et, nil
}

func (cs *contentService) ListSections(ctx context.Context, examType string) ([]*types.Section, error) {
	et, err := parseExamType(examType)
	if err != nil {
		return nil, err
	}
	return cs.sectionRepo.ListByExamType(dbctx.Context{Ctx: ctx}, et)
}

func (cs *contentService) GetSectionWithSubjects(ctx context.Context, sectionID uuid.UUID) (*types.Section, error) {
	sec, err := cs.sectionRepo.GetByIDWithSubjects(dbctx.Context{Ctx: ctx}, sectionID)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, notFound("section not found")
	}
	return sec, nil
}

func (cs *contentService) ListSubjects(ctx context.Context, sectionID uuid.UUID) ([]*types.Subject, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sec, err := cs.sectionRepo.GetByID(dbc, sectionID)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, notFound("section not found")
	}
	return cs.subjectRepo.ListBySection(dbc, sectionID)
}

func (cs *contentService) ListQuestionsBySubject(ctx context.Context, subjectID uuid.UUID) ([]*types.Question, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sub, err := cs.subjectRepo.GetByID(dbc, subjectID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, notFound("subject not found")
	}
	return cs.questionRepo.ListBySubject(dbc, subjectID)
}

func (cs *contentService) EnsureSection(ctx context.Context, examType, name string) (*types.Section, error) {
	et, err := parseExamType(examType)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidField("name", "section name is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := cs.sectionRepo.FindByName(dbc, et, name)
	if err != nil || existing != nil {
		return existing, err
	}
	created, err := cs.sectionRepo.Create(dbc, []*types.Section{{Name: name, ExamType: et}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (cs *contentService) EnsureSubject(ctx context.Context, sectionID uuid.UUID, name, description string) (*types.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidField("name", "subject name is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	sec, err := cs.sectionRepo.GetByID(dbc, sectionID)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, notFound("section not found")
	}
	existing, err := cs.subjectRepo.FindByName(dbc, sectionID, name)
	if err != nil || existing != nil {
		return existing, err
	}
	created, err := cs.subjectRepo.Create(dbc, []*types.Subject{{SectionID: sectionID, Name: name, Description: strings.TrimSpace(description)}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (cs *contentService) CreateQuestion(ctx context.Context, q *types.Question) (*types.Question, error) {
	if err := cs.validateQuestion(ctx, q); err != nil {
		return nil, err
	}
	created, err := cs.questionRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Question{q})
	if err != nil {
		if dberr.IsDuplicate(err) {
			return nil, duplicateQuestion()
		}
		return nil, err
	}
	return created[0], nil
}

// UpsertQuestion merges into the existing question with the same normalized
// text in the subject instead of failing.
func (cs *contentService) UpsertQuestion(ctx context.Context, q *types.Question) (*types.Question, error) {
	if err := cs.validateQuestion(ctx, q); err != nil {
		return nil, err
	}
	var out *types.Question
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var uErr error
		out, uErr = cs.questionRepo.Upsert(dbctx.Context{Ctx: ctx, Tx: tx}, q)
		return uErr
	})
	if err != nil {
		if dberr.IsDuplicate(err) {
			return nil, duplicateQuestion()
		}
		return nil, err
	}
	return out, nil
}

func (cs *contentService) validateQuestion(ctx context.Context, q *types.Question) error {
	if q == nil {
		return invalid("invalid_request", "question is required", nil)
	}
	q.Text = strings.TrimSpace(q.Text)
	q.CorrectOption = content.Option(normalization.ParseInputString(string(q.CorrectOption)))

	fields := map[string]string{}
	if q.SubjectID == uuid.Nil {
		fields["subject_id"] = "subject_id is required"
	}
	if q.Text == "" || normalization.QuestionKey(q.Text) == "" {
		fields["text"] = "text is required"
	}
	for i, opt := range []string{q.Option1, q.Option2, q.Option3, q.Option4} {
		if strings.TrimSpace(opt) == "" {
			fields[fmt.Sprintf("option%d", i+1)] = "option text is required"
		}
	}
	if !q.CorrectOption.Valid() {
		fields["correct_option"] = "must be one of option1, option2, option3, option4"
	}
	if len(fields) > 0 {
		return invalid("invalid_request", "question is incomplete", fields)
	}

	sub, err := cs.subjectRepo.GetByID(dbctx.Context{Ctx: ctx}, q.SubjectID)
	if err != nil {
		return err
	}
	if sub == nil {
		return notFound("subject not found")
	}
	return nil
}
