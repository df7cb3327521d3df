package course

import (
	"strings"
	"testing"

	"github.com/edufuture/edubot/internal/config"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(loadSample(t), config.DefaultRoutingConfig())
}

func TestClassifyAndAnswer_ListTriggers(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		name    string
		message string
	}{
		{"plain list question", "Какие курсы есть?"},
		{"list question in caps", "СПИСОК КУРСОВ"},
		{"english", "What courses do you offer?"},
		// List triggers pre-empt name matching even when a course
		// name is present in the same message.
		{"list trigger plus course name", "Какие курсы есть кроме Python Programming?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, ok := c.ClassifyAndAnswer(tt.message)
			if !ok {
				t.Fatalf("ClassifyAndAnswer(%q) ok = false, want list answer", tt.message)
			}
			if !strings.Contains(answer, "1. Python Programming") {
				t.Errorf("answer %q is not the numbered course list", answer)
			}
		})
	}
}

func TestClassifyAndAnswer_NameAndField(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		name     string
		message  string
		wantSubs []string
	}{
		{
			name:     "verbatim name with duration question",
			message:  "Расскажи про курс Python Programming, сколько он длится?",
			wantSubs: []string{"40", "ч."},
		},
		{
			name:     "price question",
			message:  "Сколько стоит Web Development?",
			wantSubs: []string{"20000", "руб."},
		},
		{
			name:     "description question",
			message:  "Расскажи про Data Science",
			wantSubs: []string{"Анализ данных и машинное обучение"},
		},
		{
			name:     "no field keywords gives full record",
			message:  "Data Science",
			wantSubs: []string{"25000", "80", "Анализ данных"},
		},
		{
			name:     "token fallback resolves course",
			message:  "Хочу записаться на programming, сколько стоит?",
			wantSubs: []string{"Python Programming", "15000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, ok := c.ClassifyAndAnswer(tt.message)
			if !ok {
				t.Fatalf("ClassifyAndAnswer(%q) ok = false, want course answer", tt.message)
			}
			for _, sub := range tt.wantSubs {
				if !strings.Contains(answer, sub) {
					t.Errorf("ClassifyAndAnswer(%q) = %q, missing %q", tt.message, answer, sub)
				}
			}
		})
	}
}

func TestClassifyAndAnswer_NotACourseQuery(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		name    string
		message string
	}{
		{"unrelated question", "Какая сегодня погода?"},
		{"empty message", ""},
		// "web" is shorter than the four-rune token threshold and must
		// not resolve a course on its own.
		{"short token below threshold", "что по web?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if answer, ok := c.ClassifyAndAnswer(tt.message); ok {
				t.Errorf("ClassifyAndAnswer(%q) = %q, want fall-through", tt.message, answer)
			}
		})
	}
}

func TestClassifyAndAnswer_MinTokenLengthConfigurable(t *testing.T) {
	routing := config.DefaultRoutingConfig()
	routing.MinTokenLength = 3
	c := NewClassifier(loadSample(t), routing)

	answer, ok := c.ClassifyAndAnswer("что по web?")
	if !ok {
		t.Fatal("three-rune token should resolve with MinTokenLength=3")
	}
	if !strings.Contains(answer, "Web Development") {
		t.Errorf("answer = %q, want Web Development info", answer)
	}
}
