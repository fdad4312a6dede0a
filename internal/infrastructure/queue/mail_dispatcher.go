package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackercrm/tracker-api/internal/api/metrics"
	"github.com/trackercrm/tracker-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
	deliverTimeout = 30 * time.Second
)

// MailDispatcher delivers outbound mail off the request path through a fixed
// set of workers. Messages are sharded by recipient so mail to the same
// address keeps its send order.
type MailDispatcher struct {
	workers []chan ports.Email
	sender  ports.EmailSender
	log     zerolog.Logger
}

// NewMailDispatcher creates a MailDispatcher with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewMailDispatcher(numWorkers int, sender ports.EmailSender, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers: make([]chan ports.Email, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Email, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a message to the worker responsible for its recipient. The
// call never blocks: when the shard buffer is full the message is dropped and
// its body logged, so an embedded recovery link stays reachable to operators.
func (d *MailDispatcher) Enqueue(msg ports.Email) {
	select {
	case d.workers[d.shardIndex(msg.To)] <- msg:
	default:
		metrics.MailsSentTotal.WithLabelValues("dropped").Inc()
		d.log.Error().
			Str("to", msg.To).
			Str("subject", msg.Subject).
			Msg("mail queue full, dropping message")
		d.log.Error().Msg(msg.TextBody)
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *MailDispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32()) % len(d.workers)
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Email) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			sendCtx, cancel := context.WithTimeout(ctx, deliverTimeout)
			err := d.sender.Send(sendCtx, msg)
			cancel()
			if err != nil {
				metrics.MailsSentTotal.WithLabelValues("failed").Inc()
				// Undelivered mail may carry a recovery link, so the body
				// goes to the log the way ConsoleSender prints it.
				d.log.Error().Err(err).
					Str("to", msg.To).
					Str("subject", msg.Subject).
					Int("worker_id", id).
					Msg("mail delivery failed, printing message")
				d.log.Error().Msg(msg.TextBody)
				continue
			}
			metrics.MailsSentTotal.WithLabelValues("sent").Inc()
			d.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail delivered")
		}
	}
}
