package ai

import (
	"strings"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// Prompt input limits. Inputs are cut before templating so the token cost of a
// call stays bounded whatever the caller sends.
const (
	MaxJobDescriptionRunes = 500
	MaxResumeParseRunes    = 400
	MaxResumeContextRunes  = 500
	MaxQuestionRunes       = 500
	MaxAnswerRunes         = 2000
	MaxRoleRunes           = 200
	MaxPromptSkills        = 5
	MaxContextSkills       = 8
)

// Completion budgets per task.
const (
	resumeMaxTokens     = 512
	questionsMaxTokens  = 768
	evaluationMaxTokens = 384
)

const (
	resumeSkeleton     = `{"name":"","email":"","phone":"","skills":[],"experience":[],"education":[]}`
	questionsSkeleton  = `{"technical":["q1","q2","q3","q4","q5"],"behavioral":["q1","q2","q3","q4","q5"]}`
	evaluationSkeleton = `{"score":7,"feedback":"Brief feedback","topics_to_cover":["topic1"]}`
)

const (
	resumeSystem     = "You extract structured information from resumes. Return only valid JSON."
	questionsSystem  = "You are a technical interviewer. Return only valid JSON, no extra text."
	contextSystem    = "You are a senior technical interviewer. Ask specific questions grounded in the job and the resume. Return only valid JSON."
	evaluationSystem = "You are an expert interviewer grading answers. Return only valid JSON, no extra text."
)

// BuildResumePrompt asks the model to extract resume fields.
func BuildResumePrompt(resume string) domain.Prompt {
	var b strings.Builder
	b.WriteString("Extract the resume information as JSON. Return ONLY JSON matching:\n")
	b.WriteString(resumeSkeleton)
	b.WriteString("\n\nResume: ")
	b.WriteString(truncateRunes(strings.TrimSpace(resume), MaxResumeParseRunes))
	return domain.Prompt{Task: domain.TaskResumeParse, System: resumeSystem, User: b.String(), MaxTokens: resumeMaxTokens}
}

// BuildQuestionsPrompt asks for five technical and five behavioral questions.
func BuildQuestionsPrompt(jobDescription, role string, skills []string) domain.Prompt {
	var b strings.Builder
	b.WriteString("Generate 10 interview questions. Return ONLY JSON matching:\n")
	b.WriteString(questionsSkeleton)
	b.WriteString("\n\nRole: ")
	b.WriteString(truncateRunes(strings.TrimSpace(role), MaxRoleRunes))
	b.WriteString("\nSkills: ")
	b.WriteString(joinSkills(skills, MaxPromptSkills, "general"))
	b.WriteString("\nJob: ")
	b.WriteString(truncateRunes(strings.TrimSpace(jobDescription), MaxJobDescriptionRunes))
	return domain.Prompt{Task: domain.TaskQuestionGeneration, System: questionsSystem, User: b.String(), MaxTokens: questionsMaxTokens}
}

// BuildContextQuestionsPrompt is the question prompt enriched with a resume excerpt.
func BuildContextQuestionsPrompt(jobDescription, role, resume string, skills []string) domain.Prompt {
	var b strings.Builder
	b.WriteString("Generate 10 interview questions for this candidate. Return ONLY JSON matching:\n")
	b.WriteString(questionsSkeleton)
	b.WriteString("\n\nJOB DESCRIPTION: ")
	b.WriteString(truncateRunes(strings.TrimSpace(jobDescription), MaxJobDescriptionRunes))
	b.WriteString("\n\nTARGET ROLE: ")
	b.WriteString(truncateRunes(strings.TrimSpace(role), MaxRoleRunes))
	b.WriteString("\n\nCANDIDATE RESUME: ")
	b.WriteString(truncateRunes(strings.TrimSpace(resume), MaxResumeContextRunes))
	b.WriteString("\n\nSKILLS: ")
	b.WriteString(joinSkills(skills, MaxContextSkills, "various technologies"))
	b.WriteString("\n\nBase the questions on the skills the job requires, the candidate's experience, ")
	b.WriteString("the role and any gaps between them.")
	return domain.Prompt{Task: domain.TaskQuestionGeneration, System: contextSystem, User: b.String(), MaxTokens: questionsMaxTokens}
}

// BuildEvaluationPrompt asks the model to grade one answer.
func BuildEvaluationPrompt(question, answer, role string) domain.Prompt {
	var b strings.Builder
	b.WriteString("Evaluate this interview answer on a 0-10 scale. Return ONLY JSON matching:\n")
	b.WriteString(evaluationSkeleton)
	b.WriteString("\n\nRole: ")
	b.WriteString(truncateRunes(strings.TrimSpace(role), MaxRoleRunes))
	b.WriteString("\nQ: ")
	b.WriteString(truncateRunes(strings.TrimSpace(question), MaxQuestionRunes))
	b.WriteString("\nA: ")
	b.WriteString(truncateRunes(strings.TrimSpace(answer), MaxAnswerRunes))
	return domain.Prompt{Task: domain.TaskAnswerEvaluation, System: evaluationSystem, User: b.String(), MaxTokens: evaluationMaxTokens}
}

// CollapseWhitespace folds runs of whitespace into single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joinSkills(skills []string, limit int, empty string) string {
	picked := make([]string, 0, limit)
	for _, s := range skills {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		picked = append(picked, s)
		if len(picked) == limit {
			break
		}
	}
	if len(picked) == 0 {
		return empty
	}
	return strings.Join(picked, ", ")
}
