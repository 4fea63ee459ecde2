package conversation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultPollInterval = 3 * time.Second

type PollerOption func(*Poller)

func WithPollInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// Poller keeps a Store current while a view is open: one loading refresh on
// start, then a quiet refresh every interval until stopped.
type Poller struct {
	store    *Store
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(store *Store, options ...PollerOption) *Poller {
	p := &Poller{
		store:    store,
		interval: DefaultPollInterval,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Start begins polling. Calling Start on a running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go p.loop(ctx, done)
}

// Stop cancels polling and waits until the loop has exited.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Switch moves polling over to another task.
func (p *Poller) Switch(ctx context.Context, taskID string) {
	p.Stop()
	p.store.Reset(taskID)
	p.Start(ctx)
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.refresh(ctx, true)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx, false)
		}
	}
}

func (p *Poller) refresh(ctx context.Context, showLoading bool) {
	_, err := p.store.Refresh(ctx, showLoading)
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		return
	}
	slog.Warn("failed to refresh messages", "task_id", p.store.TaskID(), "error", err)
}
