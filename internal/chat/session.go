// Package chat runs a conversation: agent mode executes commands, chat mode
// asks an AI responder, and both keep a message history.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

type Mode string

const (
	ModeChat  Mode = "chat"
	ModeAgent Mode = "agent"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeChat:
		return ModeChat, nil
	case ModeAgent, "agentic":
		return ModeAgent, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", store.ErrInvalid, s)
	}
}

const (
	commandFailedReply = "Sorry, something went wrong while running that command."
	chatFailedReply    = "Sorry, I could not get a response from the AI."
)

// Interpreter executes a single command. *command.Interpreter satisfies it.
type Interpreter interface {
	Interpret(ctx context.Context, raw string) (string, error)
}

type Session struct {
	mu        sync.Mutex
	mode      Mode
	history   []Message
	interp    Interpreter
	responder Responder
	store     store.Store
	logger    *slog.Logger
}

type SessionOption func(*Session)

func WithMode(m Mode) SessionOption {
	return func(s *Session) { s.mode = m }
}

func WithResponder(r Responder) SessionOption {
	return func(s *Session) { s.responder = r }
}

// WithContextStore lets chat mode attach the user's data to each query.
func WithContextStore(st store.Store) SessionOption {
	return func(s *Session) { s.store = st }
}

func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewSession(interp Interpreter, opts ...SessionOption) *Session {
	s := &Session{
		mode:   ModeAgent,
		interp: interp,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ToggleMode switches between chat and agent and clears the history.
func (s *Session) ToggleMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeAgent {
		s.mode = ModeChat
	} else {
		s.mode = ModeAgent
	}
	s.history = nil
	return s.mode
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.history...)
}

// Send submits one user input and returns the assistant's reply. Failures are
// logged and turned into a generic reply; blank input is ignored.
func (s *Session) Send(ctx context.Context, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, Message{Role: RoleUser, Content: input})
	var reply string
	if s.mode == ModeAgent || IsAgenticTrigger(input) {
		reply = s.runCommand(ctx, stripTrigger(input))
	} else {
		reply = s.ask(ctx, input)
	}
	s.history = append(s.history, Message{Role: RoleAssistant, Content: reply})
	return reply
}

func (s *Session) runCommand(ctx context.Context, raw string) string {
	reply, err := s.interp.Interpret(ctx, raw)
	if err != nil {
		s.logger.Error("chat: command failed", "input", raw, "error", err)
		return commandFailedReply
	}
	return reply
}

func (s *Session) ask(ctx context.Context, query string) string {
	if s.responder == nil {
		s.logger.Warn("chat: no responder configured")
		return chatFailedReply
	}
	content := query
	if s.store != nil {
		prompt, err := BuildContextPrompt(ctx, s.store, query)
		if err != nil {
			s.logger.Warn("chat: build context", "error", err)
		} else {
			content = prompt
		}
	}
	reply, err := s.responder.Respond(ctx, Request{
		Messages: []Message{{Role: RoleUser, Content: content}},
		Mode:     ModeChat,
	})
	if err != nil {
		s.logger.Error("chat: responder failed", "error", err)
		return chatFailedReply
	}
	return reply
}
