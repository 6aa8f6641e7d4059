package content

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type SubjectRepo interface {
	Create(dbc dbctx.Context, subjects []*types.Subject) ([]*types.Subject, error)
	GetByID(dbc dbctx.Context, subjectID uuid.UUID) (*types.Subject, error)
	GetByIDs(dbc dbctx.Context, subjectIDs []uuid.UUID) ([]*types.Subject, error)
	ListBySection(dbc dbctx.Context, sectionID uuid.UUID) ([]*types.Subject, error)
	FindByName(dbc dbctx.Context, sectionID uuid.UUID, name string) (*types.Subject, error)
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	repoLog := baseLog.With("repo", "SubjectRepo")
	return &subjectRepo{db: db, log: repoLog}
}

func (r *subjectRepo) Create(dbc dbctx.Context, subjects []*types.Subject) ([]*types.Subject, error) {
	if len(subjects) == 0 {
		return []*types.Subject{}, nil
	}
	if err := dbc.DB(r.db).Create(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

// GetByID preloads the owning section and returns nil when missing.
func (r *subjectRepo) GetByID(dbc dbctx.Context, subjectID uuid.UUID) (*types.Subject, error) {
	var out types.Subject
	err := dbc.DB(r.db).Preload("Section").Where("id = ?", subjectID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *subjectRepo) GetByIDs(dbc dbctx.Context, subjectIDs []uuid.UUID) ([]*types.Subject, error) {
	var results []*types.Subject
	if len(subjectIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("id IN ?", subjectIDs).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subjectRepo) ListBySection(dbc dbctx.Context, sectionID uuid.UUID) ([]*types.Subject, error) {
	var results []*types.Subject
	if err := dbc.DB(r.db).
		Where("section_id = ?", sectionID).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subjectRepo) FindByName(dbc dbctx.Context, sectionID uuid.UUID, name string) (*types.Subject, error) {
	var results []*types.Subject
	if err := dbc.DB(r.db).
		Where("section_id = ? AND name = ?", sectionID, name).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}
