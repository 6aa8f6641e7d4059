package seed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	types "github.com/yungbote/dentest-backend/internal/domain"
	"github.com/yungbote/dentest-backend/internal/platform/logger"
	"github.com/yungbote/dentest-backend/internal/services"
)

// File is the YAML layout of a content fixture file.
type File struct {
	Sections []SectionFixture `yaml:"sections"`
}

type SectionFixture struct {
	ExamType string           `yaml:"exam_type"`
	Name     string           `yaml:"name"`
	Subjects []SubjectFixture `yaml:"subjects"`
}

type SubjectFixture struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Questions   []QuestionFixture `yaml:"questions"`
}

type QuestionFixture struct {
	Code                string        `yaml:"code"`
	Text                string        `yaml:"text"`
	Options             []string      `yaml:"options"`
	Correct             string        `yaml:"correct"`
	Explanation         string        `yaml:"explanation"`
	ImageURL            string        `yaml:"image_url"`
	ExplanationImageURL string        `yaml:"explanation_image_url"`
	Images              []string      `yaml:"images"`
	Chart               *ChartFixture `yaml:"chart"`
}

type ChartFixture struct {
	PatientDetails  string `yaml:"patient_details"`
	ChiefComplaint  string `yaml:"chief_complaint"`
	MedicalHistory  string `yaml:"medical_history"`
	CurrentFindings string `yaml:"current_findings"`
}

// Report counts what a seed run wrote. Failed rows are logged and skipped.
type Report struct {
	Sections  int
	Subjects  int
	Questions int
	Failed    int
}

func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &f, nil
}

type Seeder struct {
	log     *logger.Logger
	content services.ContentService
}

func NewSeeder(log *logger.Logger, content services.ContentService) *Seeder {
	return &Seeder{log: log.With("component", "Seeder"), content: content}
}

// Apply is idempotent: sections and subjects are matched by name and
// questions by their normalized text within the subject.
func (s *Seeder) Apply(ctx context.Context, f *File) Report {
	var rep Report
	if f == nil {
		return rep
	}
	for _, secFx := range f.Sections {
		sec, err := s.content.EnsureSection(ctx, secFx.ExamType, secFx.Name)
		if err != nil {
			s.log.Warn("section skipped", "section", secFx.Name, "error", err)
			rep.Failed++
			continue
		}
		rep.Sections++
		for _, subFx := range secFx.Subjects {
			sub, err := s.content.EnsureSubject(ctx, sec.ID, subFx.Name, subFx.Description)
			if err != nil {
				s.log.Warn("subject skipped", "subject", subFx.Name, "error", err)
				rep.Failed++
				continue
			}
			rep.Subjects++
			for i, qFx := range subFx.Questions {
				q, err := qFx.question(sub.ID)
				if err == nil {
					_, err = s.content.UpsertQuestion(ctx, q)
				}
				if err != nil {
					s.log.Warn("question skipped", "subject", subFx.Name, "index", i, "error", err)
					rep.Failed++
					continue
				}
				rep.Questions++
			}
		}
	}
	s.log.Info("seed finished",
		"sections", rep.Sections,
		"subjects", rep.Subjects,
		"questions", rep.Questions,
		"failed", rep.Failed,
	)
	return rep
}

func (qf QuestionFixture) question(subjectID uuid.UUID) (*types.Question, error) {
	if len(qf.Options) != 4 {
		return nil, fmt.Errorf("question %q needs exactly 4 options, got %d", qf.Text, len(qf.Options))
	}
	q := &types.Question{
		SubjectID:           subjectID,
		Text:                qf.Text,
		Option1:             qf.Options[0],
		Option2:             qf.Options[1],
		Option3:             qf.Options[2],
		Option4:             qf.Options[3],
		CorrectOption:       types.Option(qf.Correct),
		Code:                optional(qf.Code),
		Explanation:         optional(qf.Explanation),
		ImageURL:            optional(qf.ImageURL),
		ExplanationImageURL: optional(qf.ExplanationImageURL),
	}
	for _, url := range qf.Images {
		if url = strings.TrimSpace(url); url != "" {
			q.Images = append(q.Images, types.QuestionImage{URL: url})
		}
	}
	if c := qf.Chart; c != nil {
		q.ChartData = &types.PatientChartData{
			PatientDetails:  optional(c.PatientDetails),
			ChiefComplaint:  c.ChiefComplaint,
			MedicalHistory:  c.MedicalHistory,
			CurrentFindings: c.CurrentFindings,
		}
	}
	return q, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
