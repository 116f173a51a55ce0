// Package mail delivers outgoing notifications such as invitation links.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// InvitationSubject is the subject line of invitation emails.
const InvitationSubject = "You're invited to join our company"

// InvitationMessage builds the email carrying an invitation accept link.
func InvitationMessage(to, link string) Message {
	return Message{
		To:      to,
		Subject: InvitationSubject,
		Body:    fmt.Sprintf("Click the link to register: %s", link),
	}
}

// LogSender writes messages to the operational log instead of delivering
// them. It is the sender used when no mail transport is configured.
type LogSender struct{}

// NewLogSender creates a LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// tokenParam matches token query values in message bodies.
var tokenParam = regexp.MustCompile(`token=[^\s&]+`)

// Send logs the recipient and subject at info level. The body is logged at
// debug level with token values redacted.
func (LogSender) Send(ctx context.Context, msg Message) error {
	logger := logging.FromContext(ctx)
	logger.LogAttrs(ctx, slog.LevelInfo, "outgoing mail",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	logger.LogAttrs(ctx, slog.LevelDebug, "outgoing mail body",
		slog.String("to", msg.To),
		slog.String("body", RedactTokens(msg.Body)),
	)
	return nil
}

// RedactTokens replaces every token query value in s.
func RedactTokens(s string) string {
	return tokenParam.ReplaceAllString(s, "token=REDACTED")
}

// Outbox keeps messages in memory. Tests and the CLI use it to inspect
// what would have been sent.
type Outbox struct {
	mu       sync.Mutex
	messages []Message
}

// Send appends msg.
func (o *Outbox) Send(_ context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far.
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.messages))
	copy(out, o.messages)
	return out
}
