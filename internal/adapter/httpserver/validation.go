package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
	"github.com/fairyhunter13/ai-mock-interview/pkg/textx"
)

// ParseResumeRequest is the body of POST /v1/resume/parse.
type ParseResumeRequest struct {
	Text string `json:"text" validate:"max=50000"`
}

// QuestionsRequest is the body of POST /v1/questions. ResumeText switches to
// the context-aware prompt.
type QuestionsRequest struct {
	JobDescription string   `json:"job_description" validate:"max=20000"`
	Role           string   `json:"role" validate:"max=200"`
	Skills         []string `json:"skills" validate:"max=100,dive,max=100"`
	ResumeText     string   `json:"resume_text" validate:"max=50000"`
}

// EvaluateAnswerRequest is the body of POST /v1/answers/evaluate.
type EvaluateAnswerRequest struct {
	Question string `json:"question" validate:"required,max=5000"`
	Answer   string `json:"answer" validate:"required,max=20000"`
	Role     string `json:"role" validate:"max=200"`
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New(validator.WithRequiredStructEnabled())
		vld.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return vld
}

// decodeJSON reads one JSON object from a size-capped body into dst and validates it.
// The returned details map field names to the failed validation tag.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after json body", domain.ErrInvalidArgument)
	}
	if err := getValidator().Struct(dst); err != nil {
		verrs := map[string]string{}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				verrs[fe.Field()] = fe.Tag()
			}
		}
		return verrs, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument)
	}
	return nil, nil
}

// SanitizeString strips control bytes and invalid UTF-8 and trims surrounding space.
func SanitizeString(input string) string {
	return textx.SanitizeText(input)
}

// sanitizeSkills applies SanitizeString and drops empty entries.
func sanitizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = SanitizeString(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
