package dialog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oggyb/matchbot/internal/chat"
)

// Handler processes one event to completion.
type Handler interface {
	Handle(ctx context.Context, ev chat.Event) error
}

// Dispatcher fans events out to a fixed set of workers. Events of one user
// always land on the same worker, so they are handled in arrival order;
// different users are handled in parallel.
type Dispatcher struct {
	handler Handler
	shards  []chan chat.Event
	log     *slog.Logger
}

// NewDispatcher creates workers shards with a queue of queueSize each.
func NewDispatcher(h Handler, workers, queueSize int, log *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	shards := make([]chan chat.Event, workers)
	for i := range shards {
		shards[i] = make(chan chat.Event, queueSize)
	}
	return &Dispatcher{handler: h, shards: shards, log: log}
}

// Submit queues ev, blocking while the user's shard is full. Nothing is
// queued once ctx is done, since the workers may already have drained.
func (d *Dispatcher) Submit(ctx context.Context, ev chat.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case d.shards[d.shardOf(ev.UserID)] <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the workers and blocks until ctx is done and every queued
// event has been handled. Events still queued at shutdown run on a context
// detached from ctx so their store writes are not cut short.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := range d.shards {
		wg.Add(1)
		go func(ch chan chat.Event) {
			defer wg.Done()
			d.work(ctx, ch)
		}(d.shards[i])
	}
	wg.Wait()
	d.log.Info("dispatcher drained")
	return nil
}

func (d *Dispatcher) work(ctx context.Context, ch chan chat.Event) {
	hctx := context.WithoutCancel(ctx)
	for {
		select {
		case ev := <-ch:
			d.handle(hctx, ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-ch:
					d.handle(hctx, ev)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev chat.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("handler panic", "user_id", ev.UserID, "panic", r)
		}
	}()
	if err := d.handler.Handle(ctx, ev); err != nil {
		d.log.Debug("event failed", "user_id", ev.UserID, "err", err)
	}
}

func (d *Dispatcher) shardOf(userID int64) int {
	return int(uint64(userID) % uint64(len(d.shards)))
}
