package course

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/edufuture/edubot/internal/config"
)

// Classifier routes course-domain questions using the keyword heuristic
// configured in config.RoutingConfig. It is intentionally a cheap two-pass
// keyword/substring check, not semantic matching: missed course queries
// fall through to the next routing stage.
type Classifier struct {
	repo    *Repository
	routing config.RoutingConfig
	// folded trigger phrases, precomputed at construction
	listTriggers        []string
	descriptionTriggers []string
	priceTriggers       []string
	durationTriggers    []string
}

// NewClassifier creates a classifier over the loaded catalog.
func NewClassifier(repo *Repository, routing config.RoutingConfig) *Classifier {
	fold := cases.Fold()
	return &Classifier{
		repo:                repo,
		routing:             routing,
		listTriggers:        foldAll(fold, routing.ListTriggers),
		descriptionTriggers: foldAll(fold, routing.DescriptionTriggers),
		priceTriggers:       foldAll(fold, routing.PriceTriggers),
		durationTriggers:    foldAll(fold, routing.DurationTriggers),
	}
}

func foldAll(fold cases.Caser, phrases []string) []string {
	folded := make([]string, len(phrases))
	for i, p := range phrases {
		folded[i] = fold.String(p)
	}
	return folded
}

// ClassifyAndAnswer decides whether the message is a course question and,
// if so, answers it. The second return value is false when the message
// resolved no course identifier, meaning the caller should try another
// route.
//
// Stages:
//  1. a list-trigger phrase returns the full catalog, pre-empting
//     name matching;
//  2. a verbatim course-name substring, else the first message token of
//     at least MinTokenLength runes matching any course name;
//  3. field selection by trigger group (price, duration, description;
//     full when none matched), delegated to GetCourseInfo.
func (c *Classifier) ClassifyAndAnswer(message string) (string, bool) {
	folded := cases.Fold().String(message)

	if containsAny(folded, c.listTriggers) {
		return c.repo.FormatCourseList(), true
	}

	query, ok := c.resolveCourseQuery(folded)
	if !ok {
		return "", false
	}

	return c.repo.GetCourseInfo(query, c.selectField(folded)), true
}

// resolveCourseQuery finds a course identifier inside the folded message:
// first any known course name appearing verbatim, then message tokens of
// MinTokenLength+ runes tried against course names.
func (c *Classifier) resolveCourseQuery(folded string) (string, bool) {
	for i, name := range c.repo.foldedNames {
		if strings.Contains(folded, name) {
			return c.repo.records[i].Name, true
		}
	}

	for _, token := range tokenize(folded, c.routing.MinTokenLength) {
		for _, name := range c.repo.foldedNames {
			if strings.Contains(name, token) {
				return token, true
			}
		}
	}

	return "", false
}

// selectField picks the record field requested by the message. The more
// specific value questions (price, duration) win over generic
// "tell me about" phrasing; full record when no group matched.
func (c *Classifier) selectField(folded string) Field {
	switch {
	case containsAny(folded, c.priceTriggers):
		return FieldPrice
	case containsAny(folded, c.durationTriggers):
		return FieldDuration
	case containsAny(folded, c.descriptionTriggers):
		return FieldDescription
	default:
		return FieldFull
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// tokenize splits on non-letter/non-digit runes and keeps tokens of at
// least minRunes runes.
func tokenize(s string, minRunes int) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minRunes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
