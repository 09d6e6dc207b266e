package notification

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Job types dispatched by the checkout core.
const (
	JobOrderConfirmation = "order_confirmation"
	JobDigitalDelivery   = "digital_delivery"
	JobOrderCancelled    = "order_cancelled"
)

type Job struct {
	ID      string
	Type    string
	Payload map[string]any
}

// Dispatcher is the fire-and-forget surface usecases see. Nothing that
// affects order/payment/voucher correctness may go through it; queue
// contents live in memory only and are lost on restart.
type Dispatcher interface {
	Enqueue(jobType string, payload map[string]any)
}

// Handler executes one job. A non-nil error triggers a retry until the
// attempt cap is reached.
type Handler func(job Job) error

type Queue struct {
	jobs        chan Job
	handler     Handler
	maxAttempts int
	log         *slog.Logger

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewQueue(size int, maxAttempts int, handler Handler, log *slog.Logger) *Queue {
	if size <= 0 {
		size = 64
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Queue{
		jobs:        make(chan Job, size),
		handler:     handler,
		maxAttempts: maxAttempts,
		log:         log,
		done:        make(chan struct{}),
	}
}

// Start launches the single worker. One job at a time, in order.
func (q *Queue) Start() {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-q.done:
				return
			case job := <-q.jobs:
				q.run(job)
			}
		}
	}()
}

func (q *Queue) run(job Job) {
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		err := q.handler(job)
		if err == nil {
			return
		}
		q.log.Warn("notification job failed",
			"job_id", job.ID, "type", job.Type, "attempt", attempt, "error", err)
	}
	q.log.Error("notification job dropped after retries",
		"job_id", job.ID, "type", job.Type, "attempts", q.maxAttempts)
}

// Enqueue never blocks a request path; when the buffer is full the job
// is dropped and logged.
func (q *Queue) Enqueue(jobType string, payload map[string]any) {
	job := Job{ID: uuid.NewString(), Type: jobType, Payload: payload}
	select {
	case q.jobs <- job:
	default:
		q.log.Warn("notification queue full, dropping job", "job_id", job.ID, "type", jobType)
	}
}

func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.done)
	})
	q.wg.Wait()
}
