package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/data/repos"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
)

type Repos struct {
	User       repos.UserRepo
	Profile    repos.UserProfileRepo
	UserToken  repos.UserTokenRepo
	Section    repos.SectionRepo
	Subject    repos.SubjectRepo
	Question   repos.QuestionRepo
	Status     repos.UserQuestionStatusRepo
	Attempt    repos.QuizAttemptRepo
	CustomQuiz repos.CustomQuizRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		Profile:    repos.NewUserProfileRepo(db, log),
		UserToken:  repos.NewUserTokenRepo(db, log),
		Section:    repos.NewSectionRepo(db, log),
		Subject:    repos.NewSubjectRepo(db, log),
		Question:   repos.NewQuestionRepo(db, log),
		Status:     repos.NewUserQuestionStatusRepo(db, log),
		Attempt:    repos.NewQuizAttemptRepo(db, log),
		CustomQuiz: repos.NewCustomQuizRepo(db, log),
	}
}
