package content

import "testing"

func TestQuestionIsCorrect(t *testing.T) {
	q := &Question{CorrectOption: Option3}
	if !q.IsCorrect(Option3) {
		t.Fatalf("expected option3 to be correct")
	}
	if q.IsCorrect(Option1) {
		t.Fatalf("expected option1 to be wrong")
	}
	if q.IsCorrect(Option("option9")) {
		t.Fatalf("invalid option must never be correct")
	}
	var nilQ *Question
	if nilQ.IsCorrect(Option3) {
		t.Fatalf("nil question must never be correct")
	}
}

func TestExamTypeValid(t *testing.T) {
	if !ExamTypeADAT.Valid() || !ExamTypeINBDE.Valid() {
		t.Fatalf("known exam types must be valid")
	}
	if ExamType("nbde").Valid() {
		t.Fatalf("unknown exam type must be invalid")
	}
}
