// Package complexity scores how hard a supplier mail is to translate.
// Rules run first and are pure; only the final fallback asks a model, and
// the classifier as a whole never fails outward.
package complexity

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Method records which path produced the assessment.
const (
	MethodRule     = "rule"
	MethodModel    = "model"
	MethodFallback = "fallback"
)

// Assessment is ephemeral: produced fresh per unit, never persisted. The
// ruleset evolves, so caching an assessment would risk staleness.
type Assessment struct {
	Score  int
	Level  Level
	Method string
	Reason string
}

const (
	shortTextFloor  = 100
	simpleTextLimit = 500
	longTextLimit   = 5000
)

// Estimator is the slow-path model call. Returns an integer 1..5.
type Estimator interface {
	Estimate(ctx context.Context, text, subject string) (int, error)
}

type Classifier struct {
	est Estimator // nil means rules only, ambiguous cases default to medium
	log *slog.Logger
}

func NewClassifier(est Estimator, log *slog.Logger) *Classifier {
	return &Classifier{est: est, log: log}
}

// Keyword families found in supplier correspondence that usually need a
// careful translation: technical specs, commercial terms, quality defects.
var complexMarkers = []string{
	"specification", "tolerance", "datasheet", "drawing", "dimension",
	"certificate", "material grade", "heat treatment", "surface finish",
	"invoice", "purchase order", "payment terms", "incoterms", "letter of credit",
	"warranty", "penalty", "liability", "contract",
	"defect", "non-conform", "nonconform", "deviation", "rejection", "claim",
	"corrective action", "8d report", "root cause",
}

var simpleMarkers = []string{
	"thank you", "thanks", "received", "confirmed", "noted", "will do",
	"ok, ", "okay", "got it", "best regards", "kind regards", "see attached",
}

var complexSubjectMarkers = []string{
	"claim", "defect", "deviation", "specification", "contract", "urgent quality",
}

var signaturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(tel|phone|mobile|fax)[.:]?\s*[+0-9]`),
	regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.]+`),
	regexp.MustCompile(`(?i)\bwww\.|https?://`),
	regexp.MustCompile(`(?i)^\s*(best regards|kind regards|regards|sincerely|mit freundlichen gr)`),
	regexp.MustCompile(`(?i)\b(gmbh|ltd|inc|s\.r\.l|co\., ltd)\b`),
}

// Lines with two or more multi-space or tab separated numeric columns smell
// like a pasted table.
var tabularLine = regexp.MustCompile(`\S+(?:\t+|[ ]{2,})\S*\d\S*(?:(?:\t+|[ ]{2,})\S+)*`)

// Assess runs the ordered rules over text and subject; first match wins.
// On model failure the result degrades to medium/fallback, never an error.
func (c *Classifier) Assess(ctx context.Context, text, subject string) Assessment {
	length := utf8.RuneCountInString(text)

	if length < shortTextFloor {
		return Assessment{Score: 10, Level: LevelLow, Method: MethodRule, Reason: "short text"}
	}

	if mostlySignature(text) {
		return Assessment{Score: 15, Level: LevelLow, Method: MethodRule, Reason: "signature block"}
	}

	lower := strings.ToLower(text)
	markers := countMarkers(lower, complexMarkers)
	complexSubject := hasMarker(strings.ToLower(subject), complexSubjectMarkers)
	if markers >= 2 || (markers >= 1 && complexSubject) {
		score := 60 + markers*10
		if score > 100 {
			score = 100
		}
		return Assessment{
			Score:  score,
			Level:  LevelHigh,
			Method: MethodRule,
			Reason: fmt.Sprintf("%d domain markers", markers),
		}
	}

	if countMarkers(lower, simpleMarkers) >= 2 && length < simpleTextLimit {
		return Assessment{Score: 20, Level: LevelLow, Method: MethodRule, Reason: "routine phrasing"}
	}

	if length > longTextLimit {
		return Assessment{Score: 75, Level: LevelHigh, Method: MethodRule, Reason: "long text"}
	}

	if looksTabular(text) {
		return Assessment{Score: 50, Level: LevelMedium, Method: MethodRule, Reason: "tabular content"}
	}

	return c.modelEstimate(ctx, text, subject)
}

func (c *Classifier) modelEstimate(ctx context.Context, text, subject string) Assessment {
	fallback := Assessment{Score: 50, Level: LevelMedium, Method: MethodFallback, Reason: "fallback"}
	if c.est == nil {
		return fallback
	}

	rating, err := c.est.Estimate(ctx, text, subject)
	if err != nil {
		c.log.Warn("complexity model estimate failed", "error", err.Error())
		return fallback
	}
	if rating < 1 || rating > 5 {
		c.log.Warn("complexity model returned out-of-range rating", "rating", rating)
		return fallback
	}

	level := LevelMedium
	switch {
	case rating <= 2:
		level = LevelLow
	case rating >= 4:
		level = LevelHigh
	}
	return Assessment{
		Score:  rating * 20,
		Level:  level,
		Method: MethodModel,
		Reason: fmt.Sprintf("model rating %d/5", rating),
	}
}

// mostlySignature reports whether a majority of non-empty lines match
// signature-like patterns.
func mostlySignature(text string) bool {
	lines := strings.Split(text, "\n")
	nonEmpty := 0
	matched := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonEmpty++
		for _, re := range signaturePatterns {
			if re.MatchString(line) {
				matched++
				break
			}
		}
	}
	return nonEmpty > 0 && matched*2 > nonEmpty
}

func countMarkers(lower string, markers []string) int {
	count := 0
	for _, m := range markers {
		if strings.Contains(lower, m) {
			count++
		}
	}
	return count
}

func hasMarker(lower string, markers []string) bool {
	return countMarkers(lower, markers) > 0
}

func looksTabular(text string) bool {
	hits := 0
	for _, line := range strings.Split(text, "\n") {
		if tabularLine.MatchString(line) {
			hits++
			if hits >= 3 {
				return true
			}
		}
	}
	return false
}
