package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/yungbote/dentest-backend/internal/data/repos"
	"github.com/yungbote/dentest-backend/internal/data/repos/testutil"
	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/services"
)

const fixture = `
sections:
  - exam_type: inbde
    name: Biomedical
    subjects:
      - name: Anatomy
        description: Head and neck
        questions:
          - text: What is the pulp?
            options: [Soft tissue, Enamel, Dentin, Cementum]
            correct: option1
            explanation: The pulp is the soft core.
            images: [https://img.example/pulp.png]
            chart:
              chief_complaint: Toothache
          - text: "what is the pulp?  "
            options: [Soft tissue, Enamel, Dentin, Cementum]
            correct: option1
          - text: Missing an option
            options: [a, b, c]
            correct: option1
  - exam_type: unknown
    name: Broken
`

func newSeeder(t *testing.T) (*Seeder, services.ContentService) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	content := services.NewContentService(db, log,
		repos.NewSectionRepo(db, log),
		repos.NewSubjectRepo(db, log),
		repos.NewQuestionRepo(db, log),
	)
	return NewSeeder(log, content), content
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	if _, err := Decode(strings.NewReader("sections:\n  - nme: typo\n")); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestApplyContinuesPastFailures(t *testing.T) {
	seeder, content := newSeeder(t)
	f, err := Decode(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	rep := seeder.Apply(context.Background(), f)
	if rep.Sections != 1 || rep.Subjects != 1 || rep.Questions != 2 || rep.Failed != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	sections, err := content.ListSections(context.Background(), "inbde")
	if err != nil || len(sections) != 1 {
		t.Fatalf("ListSections: %v (%d)", err, len(sections))
	}
	subjects, err := content.ListSubjects(context.Background(), sections[0].ID)
	if err != nil || len(subjects) != 1 {
		t.Fatalf("ListSubjects: %v (%d)", err, len(subjects))
	}
	questions, err := content.ListQuestionsBySubject(context.Background(), subjects[0].ID)
	if err != nil {
		t.Fatalf("ListQuestionsBySubject: %v", err)
	}
	// The second question normalizes to the first one and is merged into it.
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if questions[0].CorrectOption != types.Option("option1") {
		t.Fatalf("unexpected correct option %q", questions[0].CorrectOption)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	seeder, content := newSeeder(t)
	f, err := Decode(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	seeder.Apply(context.Background(), f)
	seeder.Apply(context.Background(), f)

	sections, err := content.ListSections(context.Background(), "inbde")
	if err != nil || len(sections) != 1 {
		t.Fatalf("expected one section after two runs: %v (%d)", err, len(sections))
	}
	subjects, _ := content.ListSubjects(context.Background(), sections[0].ID)
	if len(subjects) != 1 {
		t.Fatalf("expected one subject after two runs, got %d", len(subjects))
	}
	questions, _ := content.ListQuestionsBySubject(context.Background(), subjects[0].ID)
	if len(questions) != 1 {
		t.Fatalf("expected one question after two runs, got %d", len(questions))
	}
}
