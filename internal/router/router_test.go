package router

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/edufuture/edubot/internal/config"
	"github.com/edufuture/edubot/internal/course"
	domerrors "github.com/edufuture/edubot/internal/errors"
	"github.com/edufuture/edubot/internal/faq"
	"github.com/edufuture/edubot/internal/logger"
	"github.com/edufuture/edubot/internal/memory"
	"github.com/edufuture/edubot/internal/rag"
)

const faqCSV = `question,answer
как войти в систему,Перейдите на сайт и введите свои учетные данные.
какие курсы есть,Полный список курсов доступен в каталоге на сайте.
`

const coursesCSV = `Название,Описание,Цена,Длительность
Python Programming,Основы языка Python с нуля,15000,40
Web Development,Создание современных веб-приложений,20000,60
`

// fakeCompleter records the turns it was called with
type fakeCompleter struct {
	reply string
	err   error
	turns []memory.Turn
	block bool
}

func (f *fakeCompleter) Complete(ctx context.Context, turns []memory.Turn) (string, error) {
	f.turns = turns
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) Provider() string { return "fake" }
func (f *fakeCompleter) Close() error     { return nil }

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func newStages(t *testing.T) []Stage {
	t.Helper()

	faqRepo, err := faq.Load(writeFixture(t, "faq.csv", faqCSV))
	if err != nil {
		t.Fatalf("faq.Load() error = %v", err)
	}
	courseRepo, err := course.Load(writeFixture(t, "courses.csv", coursesCSV))
	if err != nil {
		t.Fatalf("course.Load() error = %v", err)
	}
	classifier := course.NewClassifier(courseRepo, config.DefaultRoutingConfig())

	return []Stage{NewFAQStage(faqRepo), NewCourseStage(classifier)}
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func TestRespondFAQHit(t *testing.T) {
	r := New(newStages(t), &fakeCompleter{reply: "llm"}, time.Minute, testLogger())
	mem := memory.New()

	reply, err := r.Respond(context.Background(), mem, "Подскажите, как войти в систему?")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply.Route != RouteFAQ {
		t.Errorf("Route = %q, want %q", reply.Route, RouteFAQ)
	}
	if !strings.Contains(reply.Text, "учетные данные") {
		t.Errorf("Text = %q, want the FAQ answer", reply.Text)
	}
	if mem.Len() != 0 {
		t.Errorf("memory Len() = %d after lookup hit, want 0", mem.Len())
	}
}

func TestRespondFAQBeatsCourseStage(t *testing.T) {
	// "какие курсы есть" is both a FAQ question and a course list trigger;
	// the FAQ stage is registered first and must win.
	r := New(newStages(t), &fakeCompleter{reply: "llm"}, time.Minute, testLogger())

	reply, err := r.Respond(context.Background(), memory.New(), "какие курсы есть?")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply.Route != RouteFAQ {
		t.Errorf("Route = %q, want %q", reply.Route, RouteFAQ)
	}
	if !strings.Contains(reply.Text, "каталоге") {
		t.Errorf("Text = %q, want the FAQ answer, not the course list", reply.Text)
	}
}

func TestRespondCourseHit(t *testing.T) {
	r := New(newStages(t), &fakeCompleter{reply: "llm"}, time.Minute, testLogger())
	mem := memory.New()

	reply, err := r.Respond(context.Background(), mem, "Сколько стоит курс Python Programming?")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply.Route != RouteCourse {
		t.Errorf("Route = %q, want %q", reply.Route, RouteCourse)
	}
	if !strings.Contains(reply.Text, "15000") {
		t.Errorf("Text = %q, want the course price", reply.Text)
	}
	if mem.Len() != 0 {
		t.Errorf("memory Len() = %d after lookup hit, want 0", mem.Len())
	}
}

func TestRespondCourseDuration(t *testing.T) {
	r := New(newStages(t), &fakeCompleter{reply: "llm"}, time.Minute, testLogger())

	reply, err := r.Respond(context.Background(), memory.New(), "Расскажи про курс Python Programming, сколько он длится?")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply.Route != RouteCourse {
		t.Errorf("Route = %q, want %q", reply.Route, RouteCourse)
	}
	if !strings.Contains(reply.Text, "40") || !strings.Contains(reply.Text, "ч.") {
		t.Errorf("Text = %q, want the 40-hour duration", reply.Text)
	}
}

func TestRespondFallbackAppendsMemory(t *testing.T) {
	completer := &fakeCompleter{reply: "Это вопрос не про курсы, но я помогу."}
	r := New(newStages(t), completer, time.Minute, testLogger())
	mem := memory.New()

	reply, err := r.Respond(context.Background(), mem, "Посоветуй, с чего начать изучение программирования")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply.Route != RouteLLM {
		t.Errorf("Route = %q, want %q", reply.Route, RouteLLM)
	}
	if reply.Text != completer.reply {
		t.Errorf("Text = %q, want the completer reply", reply.Text)
	}

	history := mem.History()
	if len(history) != 2 {
		t.Fatalf("memory holds %d turns, want 2", len(history))
	}
	if history[0].Role != memory.RoleUser || history[1].Role != memory.RoleAssistant {
		t.Errorf("memory roles = %q, %q, want user then assistant", history[0].Role, history[1].Role)
	}
}

func TestRespondFallbackCarriesHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "ответ"}
	r := New(newStages(t), completer, time.Minute, testLogger())
	mem := memory.New()
	mem.Append(memory.RoleUser, "первый вопрос")
	mem.Append(memory.RoleAssistant, "первый ответ")

	if _, err := r.Respond(context.Background(), mem, "уточни, пожалуйста"); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(completer.turns) != 3 {
		t.Fatalf("completer received %d turns, want 3", len(completer.turns))
	}
	if completer.turns[2].Text != "уточни, пожалуйста" {
		t.Errorf("last turn = %q, want the new user message", completer.turns[2].Text)
	}
}

func TestRespondEmptyMessage(t *testing.T) {
	r := New(newStages(t), &fakeCompleter{}, time.Minute, testLogger())

	for _, message := range []string{"", "   ", "\t\n"} {
		_, err := r.Respond(context.Background(), memory.New(), message)
		if !errors.Is(err, domerrors.ErrInvalidInput) {
			t.Errorf("Respond(%q) error = %v, want ErrInvalidInput", message, err)
		}
	}
}

func TestRespondNoCompleter(t *testing.T) {
	r := New(newStages(t), nil, time.Minute, testLogger())

	_, err := r.Respond(context.Background(), memory.New(), "произвольный вопрос")
	if !errors.Is(err, domerrors.ErrCompletionDisabled) {
		t.Errorf("Respond() error = %v, want ErrCompletionDisabled", err)
	}
}

func TestRespondCompletionErrorPropagates(t *testing.T) {
	apiErr := domerrors.NewCompletionError("openai", 500, errors.New("upstream unavailable"))
	r := New(newStages(t), &fakeCompleter{err: apiErr}, time.Minute, testLogger())

	_, err := r.Respond(context.Background(), memory.New(), "произвольный вопрос")
	var completionErr *domerrors.CompletionError
	if !errors.As(err, &completionErr) {
		t.Fatalf("Respond() error = %v, want *CompletionError", err)
	}
	if completionErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", completionErr.StatusCode)
	}
}

func TestRespondTimeout(t *testing.T) {
	r := New(newStages(t), &fakeCompleter{block: true}, 20*time.Millisecond, testLogger())
	mem := memory.New()

	_, err := r.Respond(context.Background(), mem, "произвольный вопрос")
	if !errors.Is(err, domerrors.ErrTimeout) {
		t.Fatalf("Respond() error = %v, want ErrTimeout", err)
	}
	if msg := domerrors.GetUserMessage(err); msg == "" {
		t.Error("GetUserMessage() returned empty string for timeout")
	}
}

func TestRespondCallerCancellation(t *testing.T) {
	// Cancellation by the caller must not be reported as a timeout.
	r := New(newStages(t), &fakeCompleter{block: true}, time.Minute, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.Respond(ctx, memory.New(), "произвольный вопрос")
	if errors.Is(err, domerrors.ErrTimeout) {
		t.Errorf("Respond() error = %v, caller cancellation must not map to ErrTimeout", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Respond() error = %v, want context.Canceled", err)
	}
}

func TestRespondRetrievalContext(t *testing.T) {
	bm25 := rag.NewBM25Index(testLogger())
	courseRepo, err := course.Load(writeFixture(t, "courses.csv", coursesCSV))
	if err != nil {
		t.Fatalf("course.Load() error = %v", err)
	}
	if err := bm25.Initialize(rag.BuildDocuments(courseRepo.Records())); err != nil {
		t.Fatalf("bm25.Initialize() error = %v", err)
	}
	retriever := rag.NewRetriever(nil, bm25, 1, testLogger())

	completer := &fakeCompleter{reply: "ответ"}
	r := New(newStages(t), completer, time.Minute, testLogger(), WithRetriever(retriever))

	// No course name or name token, so the course stage passes and the
	// message falls through with retrieved context attached.
	if _, err := r.Respond(context.Background(), memory.New(), "хочу изучить основы языка с нуля"); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(completer.turns) < 2 {
		t.Fatalf("completer received %d turns, want system context plus user turn", len(completer.turns))
	}
	if completer.turns[0].Role != memory.RoleSystem {
		t.Fatalf("first turn role = %q, want system", completer.turns[0].Role)
	}
	if !strings.Contains(completer.turns[0].Text, "Python Programming") {
		t.Errorf("system turn = %q, want retrieved course context", completer.turns[0].Text)
	}
}
