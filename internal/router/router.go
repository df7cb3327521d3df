// Package router resolves incoming messages through an ordered stage chain.
//
// Lookup stages (FAQ, course catalog) are tried in registration order; the
// first stage producing an answer terminates routing. Messages no stage
// claims fall through to the language-model completion backed by the
// session's conversation memory.
package router

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/edufuture/edubot/internal/completion"
	domerrors "github.com/edufuture/edubot/internal/errors"
	"github.com/edufuture/edubot/internal/logger"
	"github.com/edufuture/edubot/internal/memory"
	"github.com/edufuture/edubot/internal/metrics"
	"github.com/edufuture/edubot/internal/rag"
)

// Route labels, used in metrics and structured logs.
const (
	RouteFAQ    = "faq_hit"
	RouteCourse = "course_hit"
	RouteLLM    = "llm_fallback"
)

// Stage is a deterministic lookup tried before the completion fallback.
// Answer returns (reply, true) when the stage claims the message.
type Stage interface {
	Name() string
	Answer(message string) (string, bool)
}

// Reply is a resolved message with the route that produced it
type Reply struct {
	Text  string
	Route string
}

// Router dispatches messages to the first stage that claims them
type Router struct {
	stages    []Stage
	completer completion.Completer
	retriever *rag.Retriever
	timeout   time.Duration
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// Option configures optional router collaborators
type Option func(*Router)

// WithRetriever attaches a hybrid retriever whose results are injected as
// context into completion fallbacks.
func WithRetriever(r *rag.Retriever) Option {
	return func(rt *Router) { rt.retriever = r }
}

// WithMetrics attaches Prometheus metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(rt *Router) { rt.metrics = m }
}

// New creates a router.
// completer may be nil, in which case unclaimed messages fail with
// ErrCompletionDisabled. timeout bounds each completion call.
func New(stages []Stage, completer completion.Completer, timeout time.Duration, log *logger.Logger, opts ...Option) *Router {
	r := &Router{
		stages:    stages,
		completer: completer,
		timeout:   timeout,
		log:       log.WithModule("router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond resolves a message against mem's conversation.
// Stage hits leave mem untouched; completion fallbacks append the user turn
// and the assistant reply.
func (r *Router) Respond(ctx context.Context, mem *memory.Memory, message string) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, domerrors.ErrInvalidInput
	}

	start := time.Now()
	for _, stage := range r.stages {
		if text, ok := stage.Answer(message); ok {
			r.observe(stage.Name(), start)
			r.log.WithField("route", stage.Name()).Debug("message resolved by lookup stage")
			return Reply{Text: text, Route: stage.Name()}, nil
		}
	}

	text, err := r.complete(ctx, mem, message)
	if err != nil {
		return Reply{}, err
	}
	r.observe(RouteLLM, start)
	return Reply{Text: text, Route: RouteLLM}, nil
}

func (r *Router) complete(ctx context.Context, mem *memory.Memory, message string) (string, error) {
	if r.completer == nil {
		return "", domerrors.ErrCompletionDisabled
	}

	mem.Append(memory.RoleUser, message)

	history := mem.History()
	if r.retriever != nil {
		if retrieved := r.retriever.Retrieve(ctx, message); retrieved != "" {
			// Retrieved course context rides along as a system turn for
			// this call only; it is never stored in the conversation.
			turns := make([]memory.Turn, 0, len(history)+1)
			turns = append(turns, memory.Turn{Role: memory.RoleSystem, Text: contextPreamble + retrieved})
			turns = append(turns, history...)
			history = turns
		}
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	callStart := time.Now()
	text, err := r.completer.Complete(callCtx, history)
	if r.metrics != nil {
		r.metrics.CompletionDuration.Observe(time.Since(callStart).Seconds())
	}
	if err != nil {
		r.countCompletionError(err)
		r.log.WithError(err).Error("completion call failed")
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", domerrors.Wrap("router", "complete", domerrors.ErrTimeout,
				"Ответ занял слишком много времени, попробуйте ещё раз.")
		}
		return "", err
	}

	mem.Append(memory.RoleAssistant, text)
	return text, nil
}

const contextPreamble = "Справочная информация о курсах:\n\n"

func (r *Router) observe(route string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.RouteDecisionsTotal.WithLabelValues(route).Inc()
	r.metrics.RoutingDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

func (r *Router) countCompletionError(err error) {
	if r.metrics == nil {
		return
	}
	reason := "api_error"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	case errors.Is(err, context.Canceled):
		reason = "canceled"
	}
	r.metrics.CompletionErrorsTotal.WithLabelValues(reason).Inc()
}
