// Package chat maintains the polled tutor chat timeline for one
// (program, user) pair and reconciles bot audio replies with the message
// they belong to.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-tutor-cli/internal/api"
	"github.com/noah-isme/gema-tutor-cli/internal/models"
)

// DefaultPollInterval matches the 2s refresh the product shipped with.
const DefaultPollInterval = 2 * time.Second

// ErrSendInFlight means a send is already pending; the action is disabled
// until it resolves.
var ErrSendInFlight = errors.New("a send is already in flight")

// API is the slice of the remote client a chat session needs.
type API interface {
	Messages(ctx context.Context, programID, userID int) ([]models.Message, error)
	SendText(ctx context.Context, msg api.TextMessage) error
	SendAudio(ctx context.Context, msg api.AudioMessage) error
}

// Snapshot is one poll's view of the timeline. Messages replace the previous
// snapshot wholesale, so the derived AudioReply can never mix state from two
// polls.
type Snapshot struct {
	Messages []models.Message
	// AudioReply is the audio link of the current bot voice reply: the most
	// recent bot message whose link is a server-generated media artifact.
	// Empty when no such message exists.
	AudioReply string
}

// AttachPlayer reports whether the given timeline entry is the one the audio
// player belongs to. At most one entry matches per snapshot.
func (s Snapshot) AttachPlayer(m models.Message) bool {
	return s.AudioReply != "" && m.AudioLink == s.AudioReply
}

// DisplayContent returns the text to render for a message: upload
// placeholders become an explicit marker, everything else is verbatim.
func DisplayContent(m models.Message) string {
	if m.PendingAudioUpload() {
		return "Audio Message"
	}
	return m.Content
}

// Session polls the chat timeline and sends text or audio turns. Polls are
// serialized: the next request is only scheduled after the previous response
// resolves, so snapshots cannot arrive out of order.
type Session struct {
	api      API
	logger   zerolog.Logger
	tracer   trace.Tracer
	interval time.Duration

	programID int
	userID    int
	language  string

	mu       sync.Mutex
	snapshot Snapshot
	sending  bool
	lastErr  string
}

// Option tweaks a session at construction time.
type Option func(*Session)

// WithInterval overrides the poll interval.
func WithInterval(interval time.Duration) Option {
	return func(s *Session) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLanguage tags outgoing messages with a reply language.
func WithLanguage(language string) Option {
	return func(s *Session) {
		s.language = language
	}
}

// NewSession creates a chat session for one (program, user) pair.
func NewSession(chatAPI API, programID, userID int, logger zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		api:       chatAPI,
		logger:    logger.With().Str("component", "chat_session").Int("program_id", programID).Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-tutor-cli/internal/chat"),
		interval:  DefaultPollInterval,
		programID: programID,
		userID:    userID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run polls until ctx is cancelled. It belongs to the consuming view's
// lifetime: cancel the context on teardown and the loop stops.
func (s *Session) Run(ctx context.Context) {
	for {
		if err := s.Poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Debug().Err(err).Msg("poll failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}
	}
}

// Poll fetches the timeline once and replaces the snapshot wholesale. A
// failed poll leaves the previous snapshot untouched.
func (s *Session) Poll(ctx context.Context) error {
	messages, err := s.api.Messages(ctx, s.programID, s.userID)
	if err != nil {
		return err
	}

	snapshot := buildSnapshot(messages)
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
	return nil
}

// buildSnapshot derives the current audio reply from a full timeline: the
// most recent bot message wins, and only if its link is a media artifact
// rather than an uploaded temp file.
func buildSnapshot(messages []models.Message) Snapshot {
	snapshot := Snapshot{Messages: messages}
	for i := len(messages) - 1; i >= 0; i-- {
		if !messages[i].FromBot() {
			continue
		}
		if messages[i].HasServerAudio() {
			snapshot.AudioReply = messages[i].AudioLink
		}
		break
	}
	return snapshot
}

// Snapshot returns the most recent poll result.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// SendText posts a text turn. Blank input is rejected locally with no remote
// call; a pending send disables further sends until it resolves.
func (s *Session) SendText(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return &api.ValidationError{Message: "message text is empty"}
	}

	release, err := s.acquireSend()
	if err != nil {
		return err
	}
	defer release()

	spanCtx, span := s.tracer.Start(ctx, "chat.send_text", trace.WithAttributes(
		attribute.Int("program_id", s.programID),
	))
	defer span.End()

	err = s.api.SendText(spanCtx, api.TextMessage{
		ProgramID: s.programID,
		UserID:    s.userID,
		Text:      text,
		Language:  s.language,
	})
	s.finishSend(err)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// SendAudio uploads a recorded clip. Error state is cleared on entry, then
// the same pending discipline as SendText applies.
func (s *Session) SendAudio(ctx context.Context, fileName string, content []byte, mimeType string) error {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()

	release, err := s.acquireSend()
	if err != nil {
		return err
	}
	defer release()

	spanCtx, span := s.tracer.Start(ctx, "chat.send_audio", trace.WithAttributes(
		attribute.Int("program_id", s.programID),
		attribute.Int("bytes", len(content)),
	))
	defer span.End()

	err = s.api.SendAudio(spanCtx, api.AudioMessage{
		ProgramID: s.programID,
		UserID:    s.userID,
		FileName:  fileName,
		Content:   content,
		MIMEType:  mimeType,
		Language:  s.language,
	})
	s.finishSend(err)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (s *Session) acquireSend() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sending {
		return nil, ErrSendInFlight
	}
	s.sending = true
	return func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}, nil
}

func (s *Session) finishSend(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		return
	}
	s.lastErr = ""
}

// Sending reports whether a send is in flight, which disables the input.
func (s *Session) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// LastError returns the displayable error from the most recent failed send.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
