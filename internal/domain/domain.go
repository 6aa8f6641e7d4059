package domain

import (
	"github.com/yungbote/dentest-backend/internal/domain/auth"
	"github.com/yungbote/dentest-backend/internal/domain/content"
	"github.com/yungbote/dentest-backend/internal/domain/quiz"
	"github.com/yungbote/dentest-backend/internal/domain/quizsession"
	"github.com/yungbote/dentest-backend/internal/domain/user"
)

type User = user.User
type UserProfile = user.UserProfile
type SubscriptionType = user.SubscriptionType
type UserToken = auth.UserToken

type ExamType = content.ExamType
type Section = content.Section
type Subject = content.Subject
type Question = content.Question
type QuestionImage = content.QuestionImage
type PatientChartData = content.PatientChartData
type Option = content.Option

type UserQuestionStatus = quiz.UserQuestionStatus
type QuizAttempt = quiz.QuizAttempt
type QuizAttemptSubject = quiz.QuizAttemptSubject
type AttemptKind = quiz.AttemptKind
type CustomQuiz = quiz.CustomQuiz
type CustomQuizQuestion = quiz.CustomQuizQuestion

type QuizSession = quizsession.Session
type QuizAnswer = quizsession.Answer

const (
	SubscriptionFree    = user.SubscriptionFree
	SubscriptionPremium = user.SubscriptionPremium

	ExamTypeINBDE = content.ExamTypeINBDE
	ExamTypeADAT  = content.ExamTypeADAT

	AttemptKindSubject = quiz.AttemptKindSubject
	AttemptKindCustom  = quiz.AttemptKindCustom

	StatusCorrect    = quiz.StatusCorrect
	StatusIncorrect  = quiz.StatusIncorrect
	StatusUnanswered = quiz.StatusUnanswered
)
