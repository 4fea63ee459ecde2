package event

import (
	"context"
	"log/slog"
	"reflect"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Event is a marker interface that all events must implement.
type Event[T any] interface {
	Event()
}

// Handler receives events of type T. Handlers run on the bus workers, never on
// the publishing goroutine.
type Handler[T any] func(context.Context, T)

type EventFilter[T any] func(T) bool

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

type BusOption func(*busOptions)

type busOptions struct {
	workers   int
	queueSize int
	registry  *prometheus.Registry
}

func WithWorkers(n int) BusOption {
	return func(o *busOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithQueueSize(n int) BusOption {
	return func(o *busOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

func WithMetrics(registry *prometheus.Registry) BusOption {
	return func(o *busOptions) {
		o.registry = registry
	}
}

// Bus fans collaborator notifications (files loaded, file selected, view mode
// changed, messages refreshed) out to any number of subscribers.
type Bus struct {
	ctx         context.Context
	cancel      context.CancelFunc
	subscribers map[reflect.Type][]subscriber
	mu          sync.RWMutex
	wg          sync.WaitGroup
	closed      atomic.Bool

	queue chan delivery

	metrics *busMetrics
}

type delivery struct {
	event     any
	eventType string
	invoke    func(context.Context, any)
}

type subscriber struct {
	id      uuid.UUID
	invoke  func(context.Context, any)
	channel any
}

type Subscription struct {
	bus       *Bus
	eventType reflect.Type
	id        uuid.UUID
	once      sync.Once
}

func NewBus(options ...BusOption) *Bus {
	opts := busOptions{
		workers:   defaultWorkers,
		queueSize: defaultQueueSize,
	}
	for _, option := range options {
		option(&opts)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &Bus{
		ctx:         ctx,
		cancel:      cancel,
		subscribers: make(map[reflect.Type][]subscriber),
		queue:       make(chan delivery, opts.queueSize),
		metrics:     newBusMetrics(opts.registry),
	}

	for range opts.workers {
		bus.wg.Add(1)
		go bus.worker()
	}

	return bus
}

func (bus *Bus) worker() {
	defer bus.wg.Done()

	for {
		select {
		case <-bus.ctx.Done():
			return
		case d := <-bus.queue:
			bus.deliver(d)
		}
	}
}

func (bus *Bus) deliver(d delivery) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(bus.ctx, "panic in event handler",
				"error", r,
				"event_type", d.eventType,
				"stack", string(debug.Stack()),
			)
		}
	}()

	d.invoke(bus.ctx, d.event)
	bus.metrics.IncrementDelivered(d.eventType)
}

// Subscribe registers handler for events of type T.
//
//	sub := event.Subscribe(bus, func(ctx context.Context, e event.FilesLoaded) {
//	    slog.Info("files loaded", "count", len(e.Filenames))
//	}, nil)
//	defer sub.Unsubscribe()
func Subscribe[T Event[T]](bus *Bus, handler Handler[T], filter EventFilter[T]) *Subscription {
	if bus.closed.Load() {
		slog.WarnContext(bus.ctx, "attempted to subscribe to closed event bus")
		return &Subscription{bus: bus}
	}

	filter = orAcceptAll(filter)
	sub := subscriber{
		id: uuid.New(),
		invoke: func(ctx context.Context, event any) {
			if typed, ok := event.(T); ok && filter(typed) {
				handler(ctx, typed)
			}
		},
	}

	return bus.add(typeOf[T](), sub)
}

// SubscribeChannel delivers events of type T into a buffered channel. Events
// are dropped when the buffer is full. Unsubscribe closes the channel.
func SubscribeChannel[T Event[T]](bus *Bus, bufferSize int, filter EventFilter[T]) (<-chan T, *Subscription) {
	if bus.closed.Load() {
		slog.WarnContext(bus.ctx, "attempted to subscribe channel to closed event bus")
		ch := make(chan T)
		close(ch)
		return ch, &Subscription{bus: bus}
	}

	eventType := typeOf[T]()
	eventTypeName := eventType.String()
	ch := make(chan T, bufferSize)
	filter = orAcceptAll(filter)

	sub := subscriber{
		id:      uuid.New(),
		channel: ch,
	}
	sub.invoke = func(ctx context.Context, event any) {
		typed, ok := event.(T)
		if !ok || !filter(typed) {
			return
		}
		select {
		case ch <- typed:
		default:
			bus.metrics.IncrementDropped(eventTypeName)
			slog.DebugContext(ctx, "dropped event due to full channel buffer",
				"event_type", eventTypeName,
				"subscriber_id", sub.id,
			)
		}
	}

	return ch, bus.add(eventType, sub)
}

func (bus *Bus) add(eventType reflect.Type, sub subscriber) *Subscription {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers[eventType] = append(bus.subscribers[eventType], sub)

	return &Subscription{
		bus:       bus,
		eventType: eventType,
		id:        sub.id,
	}
}

// Unsubscribe removes the subscription. Safe to call multiple times.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()

		if s.bus.closed.Load() {
			return
		}

		subs := s.bus.subscribers[s.eventType]
		for i, sub := range subs {
			if sub.id != s.id {
				continue
			}
			s.bus.subscribers[s.eventType] = append(subs[:i:i], subs[i+1:]...)
			closeChannel(sub)
			break
		}
	})
}

// Publish queues event for every subscriber of its type. It never blocks; when
// the queue is full the delivery is dropped and counted.
func Publish[T Event[T]](bus *Bus, event T) {
	if bus.closed.Load() {
		slog.DebugContext(bus.ctx, "attempted to publish to closed event bus")
		return
	}

	eventType := reflect.TypeOf(event)
	eventTypeName := eventType.String()

	bus.mu.RLock()
	subs := append([]subscriber(nil), bus.subscribers[eventType]...)
	bus.mu.RUnlock()

	for _, sub := range subs {
		select {
		case bus.queue <- delivery{event: event, eventType: eventTypeName, invoke: sub.invoke}:
		case <-bus.ctx.Done():
			return
		default:
			bus.metrics.IncrementDropped(eventTypeName)
			slog.DebugContext(bus.ctx, "dropped event due to full work queue", "event_type", eventTypeName)
		}
	}

	bus.metrics.IncrementPublished(eventTypeName)
}

// Close stops the workers and closes every channel subscription. Safe to call
// multiple times.
func (bus *Bus) Close() {
	if !bus.closed.CompareAndSwap(false, true) {
		return
	}

	bus.cancel()
	bus.wg.Wait()

	bus.mu.Lock()
	defer bus.mu.Unlock()
	for eventType, subs := range bus.subscribers {
		for _, sub := range subs {
			closeChannel(sub)
		}
		delete(bus.subscribers, eventType)
	}
}

func (bus *Bus) IsClosed() bool {
	return bus.closed.Load()
}

// SubscriberCount returns the number of subscribers for events of type T.
func SubscriberCount[T Event[T]](bus *Bus) int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subscribers[typeOf[T]()])
}

func typeOf[T any]() reflect.Type {
	var zero T
	return reflect.TypeOf(zero)
}

func orAcceptAll[T any](filter EventFilter[T]) EventFilter[T] {
	if filter != nil {
		return filter
	}
	return func(T) bool { return true }
}

func closeChannel(sub subscriber) {
	if sub.channel != nil {
		reflect.ValueOf(sub.channel).Close()
	}
}
