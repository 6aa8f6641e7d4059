package content

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type SectionRepo interface {
	Create(dbc dbctx.Context, sections []*types.Section) ([]*types.Section, error)
	GetByID(dbc dbctx.Context, sectionID uuid.UUID) (*types.Section, error)
	GetByIDWithSubjects(dbc dbctx.Context, sectionID uuid.UUID) (*types.Section, error)
	ListByExamType(dbc dbctx.Context, examType types.ExamType) ([]*types.Section, error)
	FindByName(dbc dbctx.Context, examType types.ExamType, name string) (*types.Section, error)
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	repoLog := baseLog.With("repo", "SectionRepo")
	return &sectionRepo{db: db, log: repoLog}
}

func (r *sectionRepo) Create(dbc dbctx.Context, sections []*types.Section) ([]*types.Section, error) {
	if len(sections) == 0 {
		return []*types.Section{}, nil
	}
	if err := dbc.DB(r.db).Create(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// GetByID returns nil without error when the section does not exist.
func (r *sectionRepo) GetByID(dbc dbctx.Context, sectionID uuid.UUID) (*types.Section, error) {
	var out types.Section
	err := dbc.DB(r.db).Where("id = ?", sectionID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sectionRepo) GetByIDWithSubjects(dbc dbctx.Context, sectionID uuid.UUID) (*types.Section, error) {
	var out types.Section
	err := dbc.DB(r.db).
		Preload("Subjects", func(tx *gorm.DB) *gorm.DB { return tx.Order("name ASC") }).
		Where("id = ?", sectionID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sectionRepo) ListByExamType(dbc dbctx.Context, examType types.ExamType) ([]*types.Section, error) {
	var results []*types.Section
	if err := dbc.DB(r.db).
		Where("exam_type = ?", examType).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sectionRepo) FindByName(dbc dbctx.Context, examType types.ExamType, name string) (*types.Section, error) {
	var results []*types.Section
	if err := dbc.DB(r.db).
		Where("exam_type = ? AND name = ?", examType, name).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}
