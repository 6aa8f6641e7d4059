package db

import (
	types "github.com/yungbote/dentest-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Identity + auth
		// =========================
		&types.User{},
		&types.UserProfile{},
		&types.UserToken{},

		// =========================
		// Exam content
		// =========================
		&types.Section{},
		&types.Subject{},
		&types.Question{},
		&types.QuestionImage{},
		&types.PatientChartData{},

		// =========================
		// Answer history + attempts
		// =========================
		&types.UserQuestionStatus{},
		&types.QuizAttempt{},
		&types.QuizAttemptSubject{},
		&types.CustomQuiz{},
		&types.CustomQuizQuestion{},
	)
}
