// Package chat orchestrates a conversation: query in, answer matched or
// fetched, formatted, revealed and appended to the active session.
package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/poppitai/poppit/internal/config"
	"github.com/poppitai/poppit/internal/format"
	"github.com/poppitai/poppit/internal/match"
	"github.com/poppitai/poppit/internal/metrics"
	"github.com/poppitai/poppit/internal/models"
	"github.com/poppitai/poppit/internal/store"
)

// Sentinel errors. Check with errors.Is().
var (
	// ErrBusy means a previous answer is still being revealed; the new
	// request is rejected, not queued.
	ErrBusy = errors.New("still delivering the previous answer")

	// ErrEmptyMessage means the query was empty after trimming.
	ErrEmptyMessage = errors.New("empty message")
)

// User-facing texts for the fallback paths.
const (
	uncertainPreamble = "I'm not 100% sure, but here's what I found:\n\n"

	noMatchText         = "I'm not sure I understand. Could you rephrase that?"
	noMatchSuggestText  = noMatchText + "\n\nDid you mean:"
	noMatchNoHintText   = noMatchText + " Try asking about my features, creator, or how I work!"
	remoteFailureText   = "Sorry, I couldn't reach the model server. Make sure it is running and try again."
	degradedGreeting    = "Hello! I'm Poppit. My knowledge base failed to load, so I can't answer much right now."
	localGreetingFormat = "Hello! I'm Poppit, answering from local data. Ask me anything!"
	remoteGreeting      = "Hello! I'm Poppit, powered by the model server. Ask me anything!"
)

// RemoteClient is the remote answer source.
type RemoteClient interface {
	Ask(ctx context.Context, message string) (string, error)
}

// FeedbackSink accepts liked instruction/response pairs. Failures are
// logged, never surfaced or retried.
type FeedbackSink interface {
	SendFeedback(ctx context.Context, instruction, response string) error
}

// Reply is the outcome of one query.
type Reply struct {
	Answer      string            // raw answer text, as persisted
	HTML        string            // safe structured markup of Answer
	Confidence  models.Confidence // coarse quality label
	Suggestions []string          // alternate questions when retrieval failed
	FromCorpus  bool              // answered offline
}

// Controller owns the conversational state: the last question/answer
// context, the exclusive delivery lock and the wiring between matcher,
// formatter, store and remote source.
type Controller struct {
	cfg      config.Config
	store    *store.Store
	engine   *match.Engine
	remote   RemoteClient
	feedback FeedbackSink
	stats    *metrics.Collector
	logger   *slog.Logger

	// mu is held for the whole of a send, including the cosmetic reveal.
	mu sync.Mutex

	lastQuestion string
	lastAnswer   string
}

// New wires a controller. remote and feedback may be nil in offline mode;
// stats may be nil to disable collection.
func New(cfg config.Config, st *store.Store, engine *match.Engine, remote RemoteClient, feedback FeedbackSink, stats *metrics.Collector, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		cfg:      cfg,
		store:    st,
		engine:   engine,
		remote:   remote,
		feedback: feedback,
		stats:    stats,
		logger:   logger,
	}
}

// Greeting returns the startup message for the current mode.
func (c *Controller) Greeting() string {
	if !c.cfg.UseLocalData {
		return remoteGreeting
	}
	if c.engine == nil || c.engine.Len() == 0 {
		return degradedGreeting
	}
	return localGreetingFormat
}

// Send processes one user query end to end: the user message is persisted
// first, then the answer is computed (corpus or remote), optionally revealed
// to w character by character, persisted and returned. Rejected with ErrBusy
// while a previous send is still revealing.
func (c *Controller) Send(ctx context.Context, text string, w io.Writer) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if !c.mu.TryLock() {
		return nil, ErrBusy
	}
	defer c.mu.Unlock()

	if err := c.appendTimed(models.NewMessage(models.RoleUser, text)); err != nil {
		return nil, err
	}

	var reply *Reply
	if c.cfg.UseLocalData {
		reply = c.localAnswer(text)
	} else {
		reply = c.remoteAnswer(ctx, text)
	}

	if w != nil {
		Typewriter(w, reply.Answer, c.cfg.TypingDelay)
	}

	if err := c.appendTimed(models.NewMessage(models.RoleAssistant, reply.Answer)); err != nil {
		return nil, err
	}
	reply.HTML = format.Render(reply.Answer)
	return reply, nil
}

// appendTimed persists one message, recording the write duration.
func (c *Controller) appendTimed(msg models.Message) error {
	start := time.Now()
	err := c.store.AppendMessage(msg)
	if c.stats != nil {
		c.stats.Record(metrics.OpStoreWrite, time.Since(start))
	}
	return err
}

// localAnswer retrieves from the corpus: follow-up shortcut, then best
// match above the acceptance threshold, then suggestions.
func (c *Controller) localAnswer(text string) *Reply {
	normalized := match.Normalize(text)

	// Context carryover: a follow-up repeats the previous answer verbatim.
	if match.IsFollowUp(normalized) && c.lastAnswer != "" {
		return &Reply{Answer: c.lastAnswer, Confidence: models.ConfidenceHigh, FromCorpus: true}
	}

	start := time.Now()
	m, ok := c.engine.BestMatch(text)
	if c.stats != nil {
		c.stats.Record(metrics.OpMatch, time.Since(start))
	}

	if ok && m.Score > c.cfg.MinConfidence {
		confidence := match.Classify(m.Score)
		answer := m.Response
		if confidence != models.ConfidenceHigh {
			answer = uncertainPreamble + answer
		}
		c.lastQuestion = m.Instruction
		c.lastAnswer = answer
		return &Reply{Answer: answer, Confidence: confidence, FromCorpus: true}
	}

	suggestions := c.engine.Suggest(text, c.cfg.MaxSuggestions)
	answer := noMatchNoHintText
	if len(suggestions) > 0 {
		answer = noMatchSuggestText
	}
	return &Reply{
		Answer:      answer,
		Confidence:  models.ConfidenceHigh,
		Suggestions: suggestions,
		FromCorpus:  true,
	}
}

// remoteAnswer delegates to the model server. A failed call becomes a single
// synthesized assistant message; session state stays consistent.
func (c *Controller) remoteAnswer(ctx context.Context, text string) *Reply {
	start := time.Now()
	answer, err := c.remote.Ask(ctx, text)
	if c.stats != nil {
		c.stats.Record(metrics.OpRemoteCall, time.Since(start))
	}
	if err != nil {
		c.logger.Error("remote call failed", "error", err)
		return &Reply{Answer: remoteFailureText, Confidence: models.ConfidenceLow}
	}

	c.lastQuestion = text
	c.lastAnswer = answer
	return &Reply{Answer: answer, Confidence: models.ConfidenceHigh}
}

// Like forwards the last question/answer pair to the feedback sink.
// Fire-and-forget: failures are logged and swallowed.
func (c *Controller) Like(ctx context.Context) {
	if c.feedback == nil || c.lastQuestion == "" || c.lastAnswer == "" {
		c.logger.Debug("nothing to like")
		return
	}
	if err := c.feedback.SendFeedback(ctx, c.lastQuestion, c.lastAnswer); err != nil {
		c.logger.Warn("feedback not recorded", "error", err)
	}
}

// NewSession flushes the active session and starts a fresh one. The
// follow-up context does not carry across sessions.
func (c *Controller) NewSession() (string, error) {
	if !c.mu.TryLock() {
		return "", ErrBusy
	}
	defer c.mu.Unlock()
	c.resetContext()
	return c.store.CreateSession()
}

// SwitchSession makes another session active.
func (c *Controller) SwitchSession(id string) error {
	if !c.mu.TryLock() {
		return ErrBusy
	}
	defer c.mu.Unlock()
	c.resetContext()
	return c.store.LoadSession(id)
}

// DeleteSession removes a session; deleting the active one clears the
// carried context along with it.
func (c *Controller) DeleteSession(id string) error {
	if !c.mu.TryLock() {
		return ErrBusy
	}
	defer c.mu.Unlock()
	if id == c.store.ActiveID() {
		c.resetContext()
	}
	return c.store.DeleteSession(id)
}

// ClearSessions removes all (or all non-pinned) sessions.
func (c *Controller) ClearSessions(keepPinned bool) error {
	if !c.mu.TryLock() {
		return ErrBusy
	}
	defer c.mu.Unlock()
	c.resetContext()
	return c.store.ClearAll(keepPinned)
}

func (c *Controller) resetContext() {
	c.lastQuestion = ""
	c.lastAnswer = ""
}
