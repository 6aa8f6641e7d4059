package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/dentest-backend/internal/data/sessionstore"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
	"github.com/yungbote/dentest-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Content     services.ContentService
	Status      services.StatusService
	CustomQuiz  services.CustomQuizService
	Progress    services.ProgressService
	QuizSession services.QuizSessionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, store sessionstore.Store) Services {
	log.Info("Wiring services...")

	auth := services.NewAuthService(db, log, repos.User, repos.Profile, repos.UserToken,
		cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	user := services.NewUserService(db, log, repos.User, repos.Profile)
	content := services.NewContentService(db, log, repos.Section, repos.Subject, repos.Question)
	status := services.NewStatusService(db, log, repos.Status, repos.Question, repos.Subject)
	customQuiz := services.NewCustomQuizService(db, log, repos.Question, repos.CustomQuiz)
	progress := services.NewProgressService(log, repos.Status, repos.Attempt, repos.Subject, repos.Section)
	quizSession := services.NewQuizSessionService(db, log, store, repos.Subject, repos.Question,
		repos.Status, repos.Attempt, status, customQuiz, progress)

	return Services{
		Auth:        auth,
		User:        user,
		Content:     content,
		Status:      status,
		CustomQuiz:  customQuiz,
		Progress:    progress,
		QuizSession: quizSession,
	}
}
