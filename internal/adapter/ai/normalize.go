package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 10
)

// Field length limits for parsed resumes, in runes.
const (
	MaxNameRunes  = 200
	MaxEmailRunes = 200
	MaxPhoneRunes = 50
)

// labelKeys are tried in order when a list item is an object instead of a string.
var labelKeys = []string{"question", "text", "name", "skill", "title", "topic"}

// ClampScore bounds s to [MinScore, MaxScore].
func ClampScore(s int) int {
	if s < MinScore {
		return MinScore
	}
	if s > MaxScore {
		return MaxScore
	}
	return s
}

// NormalizeScore coerces v to an integer score. Numbers and numeric strings are
// rounded half-to-even, then clamped. Anything else yields def (also clamped).
func NormalizeScore(v any, def int) int {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return ClampScore(def)
	}
	r := math.RoundToEven(f)
	if r < MinScore {
		return MinScore
	}
	if r > MaxScore {
		return MaxScore
	}
	return int(r)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// NormalizeString coerces v to trimmed text, truncated to max runes when max > 0.
func NormalizeString(v any, max int) string {
	return truncateRunes(strings.TrimSpace(stringify(v)), max)
}

// NormalizeTopics flattens a topics value into a single comma-joined string.
func NormalizeTopics(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		return strings.Join(itemStrings(t), ", ")
	case []string:
		return strings.Join(cleanStrings(t), ", ")
	default:
		return ""
	}
}

// NormalizeSkills flattens skills into a deduplicated list capped at limit
// (no cap when limit <= 0). The first spelling of a duplicate wins.
func NormalizeSkills(v any, limit int) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.FieldsFunc(t, func(r rune) bool {
			return r == ',' || r == ';' || r == '\n' || r == '\r'
		})
	case []any:
		raw = itemStrings(t)
	case []string:
		raw = t
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// NormalizeRecords keeps free-form experience/education records, dropping nulls.
func NormalizeRecords(v any) []any {
	list, ok := v.([]any)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		if item != nil {
			out = append(out, item)
		}
	}
	return out
}

// NormalizeQuestions builds the ordered question list from the model's
// technical and behavioral lists. Both must carry at least QuestionsPerType
// usable entries; otherwise the whole set is rejected.
func NormalizeQuestions(technical, behavioral any) ([]domain.Question, bool) {
	tech, ok := usableItems(technical)
	if !ok || len(tech) < domain.QuestionsPerType {
		return nil, false
	}
	beh, ok := usableItems(behavioral)
	if !ok || len(beh) < domain.QuestionsPerType {
		return nil, false
	}
	return BuildQuestions(tech, beh), true
}

// BuildQuestions tags the first QuestionsPerType entries of each list and
// numbers them contiguously, technical first. Callers pass lists of at least
// QuestionsPerType entries.
func BuildQuestions(technical, behavioral []string) []domain.Question {
	n := domain.QuestionsPerType
	out := make([]domain.Question, 0, 2*n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Question{Text: technical[i], Type: domain.QuestionTechnical, Order: i + 1})
	}
	for i := 0; i < n; i++ {
		out = append(out, domain.Question{Text: behavioral[i], Type: domain.QuestionBehavioral, Order: n + i + 1})
	}
	return out
}

// NormalizeResume maps a decoded resume object onto a ParsedResume.
func NormalizeResume(m map[string]any, maxSkills int) domain.ParsedResume {
	return domain.ParsedResume{
		Name:       NormalizeString(m["name"], MaxNameRunes),
		Email:      NormalizeString(m["email"], MaxEmailRunes),
		Phone:      NormalizeString(m["phone"], MaxPhoneRunes),
		Skills:     NormalizeSkills(m["skills"], maxSkills),
		Experience: NormalizeRecords(m["experience"]),
		Education:  NormalizeRecords(m["education"]),
	}
}

func usableItems(v any) ([]string, bool) {
	switch t := v.(type) {
	case []any:
		return itemStrings(t), true
	case []string:
		return cleanStrings(t), true
	default:
		return nil, false
	}
}

// itemStrings stringifies and trims list items, dropping empties.
func itemStrings(list []any) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := strings.TrimSpace(itemLabel(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cleanStrings(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// itemLabel prefers a well-known text field when the item is an object.
func itemLabel(item any) string {
	if m, ok := item.(map[string]any); ok {
		for _, k := range labelKeys {
			if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return stringify(item)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case fmt.Stringer:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
