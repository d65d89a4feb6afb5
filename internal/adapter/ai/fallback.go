package ai

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// DefaultRole is used when the caller gives no role title.
const DefaultRole = "Software Engineer"

// Fallback evaluation content.
const (
	DefaultFeedback            = "Good effort. Keep practicing."
	FallbackEvaluationFeedback = "AI evaluation is currently unavailable. Your answer has been recorded; detailed feedback could not be generated this time."
	FallbackTopics             = "Continue with the next question."
	NoAnswerFeedback           = "No answer was provided. Answer the question to receive feedback."
)

const defaultUnknownSkill = "the main technologies of a {role} role"

//go:embed fallback_bank.yaml
var embeddedBank []byte

var (
	defaultBankOnce sync.Once
	defaultBank     QuestionBank
)

// QuestionBank holds the model-free question templates.
type QuestionBank struct {
	Technical    []string `yaml:"technical"`
	Behavioral   []string `yaml:"behavioral"`
	UnknownSkill string   `yaml:"unknown_skill"`
}

// ParseQuestionBank decodes and validates a YAML question bank.
func ParseQuestionBank(data []byte) (QuestionBank, error) {
	var b QuestionBank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return QuestionBank{}, fmt.Errorf("%w: question bank: %v", domain.ErrInvalidArgument, err)
	}
	if err := b.validate(); err != nil {
		return QuestionBank{}, err
	}
	if strings.TrimSpace(b.UnknownSkill) == "" {
		b.UnknownSkill = defaultUnknownSkill
	}
	return b, nil
}

// LoadQuestionBank reads an operator-provided bank from path.
func LoadQuestionBank(path string) (QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QuestionBank{}, fmt.Errorf("op=ai.LoadQuestionBank: %w", err)
	}
	b, err := ParseQuestionBank(data)
	if err != nil {
		return QuestionBank{}, fmt.Errorf("op=ai.LoadQuestionBank: %w", err)
	}
	return b, nil
}

// DefaultQuestionBank returns the embedded bank.
func DefaultQuestionBank() QuestionBank {
	defaultBankOnce.Do(func() {
		b, err := ParseQuestionBank(embeddedBank)
		if err != nil {
			panic(fmt.Sprintf("embedded question bank: %v", err))
		}
		defaultBank = b
	})
	return defaultBank
}

func (b QuestionBank) validate() error {
	if len(b.Technical) != domain.QuestionsPerType || len(b.Behavioral) != domain.QuestionsPerType {
		return fmt.Errorf("%w: question bank needs %d technical and %d behavioral templates, got %d and %d",
			domain.ErrInvalidArgument, domain.QuestionsPerType, domain.QuestionsPerType, len(b.Technical), len(b.Behavioral))
	}
	for _, list := range [][]string{b.Technical, b.Behavioral} {
		for i, q := range list {
			if strings.TrimSpace(q) == "" {
				return fmt.Errorf("%w: question bank template %d is empty", domain.ErrInvalidArgument, i+1)
			}
		}
	}
	return nil
}

// Questions renders the bank for a role and the candidate's skills.
func (b QuestionBank) Questions(role string, skills []string) []domain.Question {
	role = strings.TrimSpace(role)
	if role == "" {
		role = DefaultRole
	}
	skill := b.UnknownSkill
	if skill == "" {
		skill = defaultUnknownSkill
	}
	skill = strings.ReplaceAll(skill, "{role}", role)
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			skill = s
			break
		}
	}
	r := strings.NewReplacer("{skill}", skill, "{role}", role)
	render := func(list []string) []string {
		out := make([]string, len(list))
		for i, tmpl := range list {
			out[i] = r.Replace(tmpl)
		}
		return out
	}
	return BuildQuestions(render(b.Technical), render(b.Behavioral))
}

// FallbackResume is the all-empty resume.
func FallbackResume() domain.ParsedResume {
	return domain.ParsedResume{
		Skills:     []string{},
		Experience: []any{},
		Education:  []any{},
	}
}

// FallbackQuestions renders the embedded bank.
func FallbackQuestions(role string, skills []string) []domain.Question {
	return DefaultQuestionBank().Questions(role, skills)
}

// FallbackEvaluation is the degraded evaluation used when no usable model answer exists.
func FallbackEvaluation(score int) domain.AnswerEvaluation {
	return domain.AnswerEvaluation{
		Score:         ClampScore(score),
		Feedback:      FallbackEvaluationFeedback,
		TopicsToCover: FallbackTopics,
	}
}

// NoAnswerEvaluation is returned for an empty answer without consulting the model.
func NoAnswerEvaluation() domain.AnswerEvaluation {
	return domain.AnswerEvaluation{
		Score:         MinScore,
		Feedback:      NoAnswerFeedback,
		TopicsToCover: FallbackTopics,
	}
}
