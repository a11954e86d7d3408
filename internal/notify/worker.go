package notify

import (
	"context"
	"sync"
	"time"

	"github.com/easyconsult/backend/internal/observability/metrics"
	"github.com/easyconsult/backend/pkg/logging"
)

const (
	dequeueBatch = 10
	dequeueWait  = 5 * time.Second
)

// Worker drains the mail queue and delivers through an EmailSender. Failed
// sends are logged and acked rather than retried; a mail is best-effort.
type Worker struct {
	queue   Queue
	sender  EmailSender
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
	count   int
}

// NewWorker creates a worker with count delivery goroutines.
func NewWorker(queue Queue, sender EmailSender, count int, bookingMetrics *metrics.BookingMetrics, logger *logging.Logger) *Worker {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if sender == nil {
		panic("notify: sender cannot be nil")
	}
	if count <= 0 {
		count = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		queue:   queue,
		sender:  sender,
		metrics: bookingMetrics,
		logger:  logger.Component("notify-worker"),
		count:   count,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		jobs, err := w.queue.Dequeue(ctx, dequeueBatch, dequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("mail dequeue failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		for _, job := range jobs {
			w.deliver(ctx, job)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, job QueuedJob) {
	if err := w.sender.Send(ctx, job.Message); err != nil {
		w.metrics.ObserveEmail(job.Template, "failed")
		w.logger.Error("mail delivery failed", "template", job.Template, "to", job.Message.To, "error", err)
	} else {
		w.metrics.ObserveEmail(job.Template, "sent")
	}
	if err := w.queue.Ack(ctx, job.Receipt); err != nil {
		w.logger.Error("mail ack failed", "template", job.Template, "error", err)
	}
}
