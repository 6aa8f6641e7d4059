package services

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/data/repos"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/dbctx"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

// SubjectProgress is the score of one subject. Percentage is nil when
// nothing was answered.
type SubjectProgress struct {
	SubjectID   uuid.UUID `json:"subject_id"`
	SubjectName string    `json:"subject_name,omitempty"`
	Correct     int       `json:"correct"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  *float64  `json:"percentage"`
}

// Percentage returns score/total*100 rounded to two decimals, or nil when
// total is zero.
func Percentage(score, total int) *float64 {
	if total <= 0 {
		return nil
	}
	p := roundPercent(float64(score) / float64(total) * 100)
	return &p
}

func roundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}

func newSubjectProgress(subjectID uuid.UUID, name string, score, total int) SubjectProgress {
	return SubjectProgress{
		SubjectID:   subjectID,
		SubjectName: name,
		Correct:     score,
		Score:       score,
		Total:       total,
		Percentage:  Percentage(score, total),
	}
}

type ProgressService interface {
	// UserProgress lists every subject the user answered at least once.
	UserProgress(ctx context.Context) ([]SubjectProgress, error)
	// SubjectsProgress returns one entry per requested subject, including
	// subjects without answers.
	SubjectsProgress(ctx context.Context, subjectIDs []uuid.UUID) ([]SubjectProgress, error)
	SectionProgress(ctx context.Context, sectionID uuid.UUID) ([]SubjectProgress, error)
	// AttemptProgress reads the per-subject snapshot of one attempt.
	AttemptProgress(ctx context.Context, attemptID uuid.UUID) ([]SubjectProgress, error)
	// ForUser is SubjectsProgress for an explicit user, used when a quiz
	// result is assembled.
	ForUser(ctx context.Context, userID uuid.UUID, subjectIDs []uuid.UUID) ([]SubjectProgress, error)
}

type progressService struct {
	log         *logger.Logger
	statusRepo  repos.UserQuestionStatusRepo
	attemptRepo repos.QuizAttemptRepo
	subjectRepo repos.SubjectRepo
	sectionRepo repos.SectionRepo
}

func NewProgressService(
	log *logger.Logger,
	statusRepo repos.UserQuestionStatusRepo,
	attemptRepo repos.QuizAttemptRepo,
	subjectRepo repos.SubjectRepo,
	sectionRepo repos.SectionRepo,
) ProgressService {
	return &progressService{
		log:         log.With("service", "ProgressService"),
		statusRepo:  statusRepo,
		attemptRepo: attemptRepo,
		subjectRepo: subjectRepo,
		sectionRepo: sectionRepo,
	}
}

func (ps *progressService) subjectNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	subjects, err := ps.subjectRepo.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return nil, err
	}
	for _, s := range subjects {
		names[s.ID] = s.Name
	}
	return names, nil
}

func (ps *progressService) UserProgress(ctx context.Context) ([]SubjectProgress, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := ps.statusRepo.CountBySubject(dbctx.Context{Ctx: ctx}, userID, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.SubjectID)
	}
	names, err := ps.subjectNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]SubjectProgress, 0, len(counts))
	for _, c := range counts {
		out = append(out, newSubjectProgress(c.SubjectID, names[c.SubjectID], c.Correct, c.Total))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubjectName < out[j].SubjectName })
	return out, nil
}

func (ps *progressService) SubjectsProgress(ctx context.Context, subjectIDs []uuid.UUID) ([]SubjectProgress, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	ids := dedupe(subjectIDs)
	if len(ids) == 0 {
		return nil, invalidField("subject_ids", "at least one subject is required")
	}
	return ps.ForUser(ctx, userID, ids)
}

// ForUser keeps the order of subjectIDs and fills unanswered
// subjects with the no-data entry.
func (ps *progressService) ForUser(ctx context.Context, userID uuid.UUID, subjectIDs []uuid.UUID) ([]SubjectProgress, error) {
	counts, err := ps.statusRepo.CountBySubject(dbctx.Context{Ctx: ctx}, userID, subjectIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]repos.SubjectCount, len(counts))
	for _, c := range counts {
		byID[c.SubjectID] = c
	}
	names, err := ps.subjectNames(ctx, subjectIDs)
	if err != nil {
		return nil, err
	}
	out := make([]SubjectProgress, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		c := byID[id]
		out = append(out, newSubjectProgress(id, names[id], c.Correct, c.Total))
	}
	return out, nil
}

func (ps *progressService) SectionProgress(ctx context.Context, sectionID uuid.UUID) ([]SubjectProgress, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	section, err := ps.sectionRepo.GetByIDWithSubjects(dbctx.Context{Ctx: ctx}, sectionID)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, notFound("section not found")
	}
	ids := make([]uuid.UUID, 0, len(section.Subjects))
	for _, s := range section.Subjects {
		ids = append(ids, s.ID)
	}
	if len(ids) == 0 {
		return []SubjectProgress{}, nil
	}
	return ps.ForUser(ctx, userID, ids)
}

func (ps *progressService) AttemptProgress(ctx context.Context, attemptID uuid.UUID) ([]SubjectProgress, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	attempt, err := ps.attemptRepo.GetForUser(dbctx.Context{Ctx: ctx}, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, notFound("quiz attempt not found")
	}
	return ps.attemptSnapshot(ctx, attempt)
}

func (ps *progressService) attemptSnapshot(ctx context.Context, attempt *types.QuizAttempt) ([]SubjectProgress, error) {
	ids := make([]uuid.UUID, 0, len(attempt.Subjects))
	for _, s := range attempt.Subjects {
		ids = append(ids, s.SubjectID)
	}
	names, err := ps.subjectNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]SubjectProgress, 0, len(attempt.Subjects))
	for _, s := range attempt.Subjects {
		out = append(out, newSubjectProgress(s.SubjectID, names[s.SubjectID], s.Score, s.Total))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubjectName < out[j].SubjectName })
	return out, nil
}
