// Package main provides an interactive terminal client for the support chatbot.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/edufuture/edubot/internal/completion"
	"github.com/edufuture/edubot/internal/config"
	"github.com/edufuture/edubot/internal/course"
	domerrors "github.com/edufuture/edubot/internal/errors"
	"github.com/edufuture/edubot/internal/faq"
	"github.com/edufuture/edubot/internal/logger"
	"github.com/edufuture/edubot/internal/memory"
	"github.com/edufuture/edubot/internal/rag"
	"github.com/edufuture/edubot/internal/router"
)

const (
	greeting = "Чат-бот поддержки запущен. Введите вопрос (exit или quit для выхода)."
	farewell = "До свидания!"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Keep structured logs on stderr so stdout stays a clean conversation
	log := logger.NewWithWriter(cfg.LogLevel, os.Stderr)

	faqRepo, err := faq.Load(cfg.FAQPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load FAQ data")
	}
	courseRepo, err := course.Load(cfg.CoursesPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load course catalog")
	}
	classifier := course.NewClassifier(courseRepo, cfg.Routing)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	completer, err := completion.New(ctx, cfg, log)
	if err != nil {
		if !errors.Is(err, domerrors.ErrCompletionDisabled) {
			log.WithError(err).Fatal("Failed to create completion client")
		}
		log.Warn("Completion disabled, only FAQ and course questions will be answered")
		completer = nil
	} else {
		defer func() { _ = completer.Close() }()
	}

	stages := []router.Stage{
		router.NewFAQStage(faqRepo),
		router.NewCourseStage(classifier),
	}
	opts := []router.Option{}
	if cfg.RetrievalEnabled {
		if retriever := buildRetriever(ctx, cfg, courseRepo, log); retriever != nil {
			opts = append(opts, router.WithRetriever(retriever))
		}
	}
	rt := router.New(stages, completer, cfg.CompletionTimeout, log, opts...)

	var mem *memory.Memory
	if cfg.MaxHistoryTurns > 0 {
		mem = memory.WithMaxTurns(cfg.MaxHistoryTurns)
	} else {
		mem = memory.New()
	}

	run(ctx, rt, mem, os.Stdin, os.Stdout)
}

// run drives the read-eval-print loop until EOF, cancellation, or an exit
// command.
func run(ctx context.Context, rt *router.Router, mem *memory.Memory, in io.Reader, out io.Writer) {
	_, _ = fmt.Fprintln(out, greeting)

	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, farewell)
			return
		}
		if ctx.Err() != nil {
			_, _ = fmt.Fprintln(out, farewell)
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExitCommand(line) {
			_, _ = fmt.Fprintln(out, farewell)
			return
		}

		reply, err := rt.Respond(ctx, mem, line)
		if err != nil {
			_, _ = fmt.Fprintln(out, failureMessage(err))
			continue
		}
		_, _ = fmt.Fprintln(out, reply.Text)
	}
}

// isExitCommand reports whether line terminates the session.
// Matching is case-insensitive, so EXIT and Quit work too.
func isExitCommand(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true
	}
	return false
}

// failureMessage renders an error as a user-facing reply
func failureMessage(err error) string {
	var completionErr *domerrors.CompletionError
	switch {
	case errors.Is(err, domerrors.ErrCompletionDisabled):
		return "Я пока умею отвечать только на вопросы о курсах и из базы знаний."
	case errors.Is(err, domerrors.ErrTimeout):
		return "Ответ занял слишком много времени, попробуйте ещё раз."
	case errors.As(err, &completionErr):
		return "Не удалось получить ответ от языковой модели, попробуйте позже."
	default:
		return "Произошла ошибка, попробуйте ещё раз."
	}
}

// buildRetriever indexes the course catalog for fallback context.
// The CLI stays lexical-only unless an embedding key is configured.
func buildRetriever(ctx context.Context, cfg *config.Config, courseRepo *course.Repository, log *logger.Logger) *rag.Retriever {
	docs := rag.BuildDocuments(courseRepo.Records())

	bm25Index := rag.NewBM25Index(log)
	if err := bm25Index.Initialize(docs); err != nil {
		log.WithError(err).Warn("Failed to initialize BM25 index")
		return nil
	}

	var vectorStore *rag.VectorStore
	if cfg.EmbeddingAPIKey != "" {
		store, err := rag.NewVectorStore(cfg.EmbeddingAPIKey, log)
		if err != nil {
			log.WithError(err).Warn("Failed to create vector store, lexical retrieval only")
		} else if store != nil {
			if err := store.Initialize(ctx, docs); err != nil {
				log.WithError(err).Warn("Failed to index courses in vector store")
			} else {
				vectorStore = store
			}
		}
	}

	return rag.NewRetriever(vectorStore, bm25Index, cfg.RetrievalTopK, log)
}
