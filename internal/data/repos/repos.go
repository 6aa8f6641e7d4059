package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/data/repos/auth"
	"github.com/yungbote/dentest-backend/internal/data/repos/content"
	"github.com/yungbote/dentest-backend/internal/data/repos/quiz"
	"github.com/yungbote/dentest-backend/internal/data/repos/user"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserProfileRepo = user.UserProfileRepo
type UserTokenRepo = auth.UserTokenRepo

type SectionRepo = content.SectionRepo
type SubjectRepo = content.SubjectRepo
type QuestionRepo = content.QuestionRepo

type UserQuestionStatusRepo = quiz.UserQuestionStatusRepo
type QuizAttemptRepo = quiz.QuizAttemptRepo
type CustomQuizRepo = quiz.CustomQuizRepo

type SubjectCount = quiz.SubjectCount

const (
	FilterAll        = content.FilterAll
	FilterUnanswered = content.FilterUnanswered
	FilterCorrect    = content.FilterCorrect
	FilterIncorrect  = content.FilterIncorrect
)

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	return user.NewUserProfileRepo(db, baseLog)
}
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return content.NewSectionRepo(db, baseLog)
}
func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	return content.NewSubjectRepo(db, baseLog)
}
func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return content.NewQuestionRepo(db, baseLog)
}

func NewUserQuestionStatusRepo(db *gorm.DB, baseLog *logger.Logger) UserQuestionStatusRepo {
	return quiz.NewUserQuestionStatusRepo(db, baseLog)
}
func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return quiz.NewQuizAttemptRepo(db, baseLog)
}
func NewCustomQuizRepo(db *gorm.DB, baseLog *logger.Logger) CustomQuizRepo {
	return quiz.NewCustomQuizRepo(db, baseLog)
}
