package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/furisto/taskview/api/go/client"
	"github.com/furisto/taskview/shared"
)

// CopiedResetDelay is how long a message shows as copied.
const CopiedResetDelay = 2 * time.Second

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrSendInProgress = errors.New("a message is already being sent")
)

const (
	sendKindSend  = "send"
	sendKindRetry = "retry"
)

type MessageSender interface {
	ContinueTask(ctx context.Context, taskID string, message string) error
}

type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the clipboard of the operating system.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// afterFunc schedules f after d and returns a function that cancels it.
type afterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type ComposerOption func(*Composer)

func WithClipboard(cb Clipboard) ComposerOption {
	return func(c *Composer) {
		c.clipboard = cb
	}
}

// WithSendFailureHandler registers fn to be told about failed sends and
// retries. It is the place for transient notices; the history is not touched.
func WithSendFailureHandler(fn func(err error, retry bool)) ComposerOption {
	return func(c *Composer) {
		c.onFailure = fn
	}
}

// WithSentHandler registers fn to be called after a successful send or retry.
func WithSentHandler(fn func(taskID string, retry bool)) ComposerOption {
	return func(c *Composer) {
		c.onSent = fn
	}
}

func WithComposerMetrics(metrics *Metrics) ComposerOption {
	return func(c *Composer) {
		c.metrics = metrics
	}
}

func withAfterFunc(fn afterFunc) ComposerOption {
	return func(c *Composer) {
		c.after = fn
	}
}

type copiedMark struct {
	seq  uint64
	stop func() bool
}

// Composer owns the draft of the next message and the copy indicators of the
// message list.
type Composer struct {
	store     *Store
	sender    MessageSender
	clipboard Clipboard
	after     afterFunc
	onFailure func(error, bool)
	onSent    func(string, bool)
	metrics   *Metrics

	mu      sync.Mutex
	draft   string
	sending bool
	copySeq uint64
	copied  map[string]copiedMark
}

func NewComposer(store *Store, sender MessageSender, options ...ComposerOption) *Composer {
	c := &Composer{
		store:     store,
		sender:    sender,
		clipboard: SystemClipboard{},
		after:     timeAfterFunc,
		copied:    make(map[string]copiedMark),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Composer) SetDraft(draft string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = draft
}

func (c *Composer) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Send posts content as the next user message. The draft is cleared while the
// message is on its way and restored if sending fails.
func (c *Composer) Send(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrSendInProgress
	}
	previous := c.draft
	c.draft = ""
	c.sending = true
	c.mu.Unlock()

	err := c.post(ctx, content, false)
	if err != nil {
		c.mu.Lock()
		c.draft = previous
		c.mu.Unlock()
	}
	return err
}

// Retry sends content of an earlier message again. The draft is left alone.
func (c *Composer) Retry(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrSendInProgress
	}
	c.sending = true
	c.mu.Unlock()

	return c.post(ctx, content, true)
}

func (c *Composer) post(ctx context.Context, content string, retry bool) error {
	kind := sendKindSend
	if retry {
		kind = sendKindRetry
	}
	taskID := c.store.TaskID()

	err := c.sender.ContinueTask(ctx, taskID, content)

	c.mu.Lock()
	c.sending = false
	c.mu.Unlock()

	if err != nil {
		source := shared.ErrorSourceApplication
		if client.IsTransportError(err) {
			source = shared.ErrorSourceTransport
		}
		wrapped := shared.Wrap(source, err, "failed to send message")

		c.metrics.sent(kind, outcomeFor(source))
		slog.Error("failed to send message", "task_id", taskID, "retry", retry, "error", err)
		if c.onFailure != nil {
			c.onFailure(wrapped, retry)
		}
		return wrapped
	}

	c.metrics.sent(kind, outcomeSuccess)
	if c.onSent != nil {
		c.onSent(taskID, retry)
	}

	if _, err := c.store.Refresh(ctx, false); err != nil {
		slog.Warn("failed to refresh messages after send", "task_id", taskID, "error", err)
	}
	return nil
}

func outcomeFor(source shared.ErrorSource) string {
	if source == shared.ErrorSourceTransport {
		return outcomeTransportError
	}
	return outcomeApplicationError
}

// Copy puts content on the clipboard and marks messageID as copied for
// CopiedResetDelay. Clipboard failures are only logged.
func (c *Composer) Copy(messageID, content string) {
	if err := c.clipboard.WriteAll(content); err != nil {
		slog.Debug("failed to copy message", "message_id", messageID, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if mark, ok := c.copied[messageID]; ok {
		mark.stop()
	}

	c.copySeq++
	seq := c.copySeq
	stop := c.after(CopiedResetDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if mark, ok := c.copied[messageID]; ok && mark.seq == seq {
			delete(c.copied, messageID)
		}
	})
	c.copied[messageID] = copiedMark{seq: seq, stop: stop}
}

func (c *Composer) Copied(messageID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.copied[messageID]
	return ok
}

// Close cancels pending copy indicator resets.
func (c *Composer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, mark := range c.copied {
		mark.stop()
		delete(c.copied, id)
	}
}
