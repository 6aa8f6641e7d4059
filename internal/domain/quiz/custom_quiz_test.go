package quiz

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestCustomQuizQuestionIDsFollowOrder(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	cq := &CustomQuiz{Questions: []CustomQuizQuestion{
		{QuestionID: c, Order: 2},
		{QuestionID: a, Order: 0},
		{QuestionID: b, Order: 1},
	}}
	got := cq.QuestionIDs()
	want := []uuid.UUID{a, b, c}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: want=%s got=%s", i, want[i], got[i])
		}
	}
	if cq.Questions[0].QuestionID != c {
		t.Fatalf("QuestionIDs must not reorder the receiver")
	}
}

func TestQuizAttemptQuestionIDsRoundTrip(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	a := &QuizAttempt{}
	if err := a.SetQuestionIDs(ids); err != nil {
		t.Fatalf("SetQuestionIDs: %v", err)
	}
	var raw []string
	if err := json.Unmarshal(a.QuestionIDs, &raw); err != nil || len(raw) != 2 {
		t.Fatalf("stored json malformed: %s (%v)", a.QuestionIDs, err)
	}
	got, err := a.DecodeQuestionIDs()
	if err != nil {
		t.Fatalf("DecodeQuestionIDs: %v", err)
	}
	if len(got) != 2 || got[0] != ids[0] || got[1] != ids[1] {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestStatusLabel(t *testing.T) {
	yes, no := true, false
	if (&UserQuestionStatus{}).Label() != StatusUnanswered {
		t.Fatalf("nil last_was_correct must be unanswered")
	}
	if (&UserQuestionStatus{LastWasCorrect: &yes}).Label() != StatusCorrect {
		t.Fatalf("expected correct")
	}
	if (&UserQuestionStatus{LastWasCorrect: &no}).Label() != StatusIncorrect {
		t.Fatalf("expected incorrect")
	}
}
