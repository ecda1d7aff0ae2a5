package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/anandwan/awaas-backend/internal/events"
	kafkax "github.com/anandwan/awaas-backend/internal/kafka"
)

// Handler processes decoded guest events.
type Handler interface {
	HandleGuestRegistered(ctx context.Context, e events.GuestRegistered) error
}

// Source is the consumer side of the guest events topic.
type Source interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// DeadLetters receives messages that could not be handled.
type DeadLetters interface {
	Publish(ctx context.Context, key, value []byte) error
}

type Notifier struct {
	log        *zap.Logger
	service    Handler
	c          Source
	dlq        DeadLetters
	maxWorkers int
}

func NewNotifier(log *zap.Logger, service Handler, c Source, dlq DeadLetters, maxWorkers int) *Notifier {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Notifier{
		log:        log,
		service:    service,
		c:          c,
		dlq:        dlq,
		maxWorkers: maxWorkers,
	}
}

// Run fetches messages until ctx is cancelled. On return every fetched
// message has been handled and committed or sent to the dead letter topic.
func (n *Notifier) Run(ctx context.Context) error {
	sem := make(chan struct{}, n.maxWorkers) // concurrency limit
	var wg sync.WaitGroup
	defer wg.Wait()

	// In-flight messages finish after ctx is cancelled.
	work := context.WithoutCancel(ctx)

	for {
		m, err := n.c.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			n.log.Error("failed to read message", zap.Error(err))
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		wg.Add(1)
		go func(m kafka.Message) {
			defer wg.Done()
			defer func() { <-sem }()
			n.process(work, m)
		}(m)
	}
}

func (n *Notifier) process(ctx context.Context, m kafka.Message) {
	if err := n.handleMessage(ctx, m); err != nil {
		n.log.Error("failed to handle message", zap.Error(err), zap.Int64("offset", m.Offset))
		if err := n.dlq.Publish(ctx, m.Key, m.Value); err != nil {
			n.log.Error("failed to publish to dlq", zap.Error(err))
			return
		}
	}
	if err := n.c.Commit(ctx, m); err != nil {
		n.log.Error("failed to commit message", zap.Error(err))
	}
}

var errUnknownType = errors.New("unknown event type")

func (n *Notifier) handleMessage(ctx context.Context, m kafka.Message) error {
	env, err := kafkax.ParseEnvelope(m.Value)
	if err != nil {
		return err
	}

	switch env.Type {
	case events.TypeGuestRegistered:
		var e events.GuestRegistered
		if err := json.Unmarshal(m.Value, &e); err != nil {
			return err
		}
		return n.service.HandleGuestRegistered(ctx, e)
	default:
		return fmt.Errorf("%w: %q", errUnknownType, env.Type)
	}
}
