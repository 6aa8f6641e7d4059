package services

import (
	"errors"
	"net/http"

	"github.com/yungbote/dentest-backend/internal/platform/apierr"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("invalid request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrDuplicateQuestion = errors.New("duplicate question")
	ErrEmptyPool         = errors.New("no questions available")
)

// kindError carries a caller-facing message while still matching its
// sentinel through errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func notFound(msg string) error {
	return apierr.NotFound(&kindError{kind: ErrNotFound, msg: msg})
}

func invalid(code, msg string, fields map[string]string) error {
	if code == "" {
		code = "invalid_request"
	}
	return apierr.WithFields(apierr.BadRequest(code, &kindError{kind: ErrValidation, msg: msg}), fields)
}

func invalidField(field, msg string) error {
	return invalid("invalid_request", msg, map[string]string{field: msg})
}

func unauthorized(msg string) error {
	return apierr.Unauthorized(&kindError{kind: ErrUnauthorized, msg: msg})
}

func forbidden(msg string) error {
	return apierr.Forbidden(&kindError{kind: ErrForbidden, msg: msg})
}

func conflict(code, field, msg string) error {
	return apierr.WithFields(
		apierr.BadRequest(code, &kindError{kind: ErrConflict, msg: msg}),
		map[string]string{field: msg},
	)
}

func duplicateQuestion() error {
	return apierr.BadRequest("duplicate_question", &kindError{
		kind: errors.Join(ErrValidation, ErrDuplicateQuestion),
		msg:  "a question with the same text already exists in this subject",
	})
}

func emptyPool() error {
	return apierr.New(http.StatusNotFound, "no_questions", &kindError{
		kind: ErrEmptyPool,
		msg:  "No questions match the selected subjects and filter. Try another filter.",
	})
}
