package ai

import (
	"strings"
)

// Refusal categories.
const (
	RefusalNone        = ""
	RefusalApology     = "apology"
	RefusalCapability  = "capability_limitation"
	RefusalPolicy      = "policy"
	RefusalSelfMention = "assistant_disclaimer"
)

// RefusalAnalysis is the result of refusal detection on a model answer.
type RefusalAnalysis struct {
	IsRefusal   bool   `json:"is_refusal"`
	RefusalType string `json:"refusal_type,omitempty"`
	Indicator   string `json:"indicator,omitempty"`
}

type refusalIndicator struct {
	phrase string
	kind   string
}

// Checked in order; the first match wins.
var refusalIndicators = []refusalIndicator{
	{"i'm sorry", RefusalApology},
	{"i am sorry", RefusalApology},
	{"i apologize", RefusalApology},
	{"unfortunately, i", RefusalApology},
	{"i cannot", RefusalCapability},
	{"i can't", RefusalCapability},
	{"i can not", RefusalCapability},
	{"i'm unable", RefusalCapability},
	{"i am unable", RefusalCapability},
	{"i'm not able", RefusalCapability},
	{"i won't", RefusalPolicy},
	{"against my guidelines", RefusalPolicy},
	{"content policy", RefusalPolicy},
	{"as an ai", RefusalSelfMention},
	{"as a language model", RefusalSelfMention},
}

// DetectRefusal reports whether a model answer reads like a refusal.
// Callers only consult it once JSON extraction has failed.
func DetectRefusal(text string) RefusalAnalysis {
	lower := strings.ToLower(strings.ReplaceAll(text, "’", "'"))
	for _, ind := range refusalIndicators {
		if strings.Contains(lower, ind.phrase) {
			return RefusalAnalysis{IsRefusal: true, RefusalType: ind.kind, Indicator: ind.phrase}
		}
	}
	return RefusalAnalysis{}
}
