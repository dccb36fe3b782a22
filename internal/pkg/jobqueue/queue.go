package jobqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/internal/pkg/push"
)

const (
	// DefaultWorkers bounds concurrent push sends.
	DefaultWorkers = 4
	// DefaultBuffer bounds how many sends may wait; beyond that jobs are
	// dropped and counted, a burst must not block the webhook handler.
	DefaultBuffer = 256
	// sendTimeout caps one delivery attempt. It affects only that send.
	sendTimeout = 10 * time.Second
)

// Queue dispatches push sends on a bounded worker pool. Failures are
// isolated per job: a send error never affects other subscriptions and is
// never retried.
type Queue struct {
	sender  push.Sender
	workers int
	jobs    chan Job
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	enqueued  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
	dropped   atomic.Int64
}

// NewQueue creates a new push dispatch queue
func NewQueue(sender push.Sender, workers int) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		sender:  sender,
		workers: workers,
		jobs:    make(chan Job, DefaultBuffer),
		stopCh:  make(chan struct{}),
	}
}

// Start starts the queue workers
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}

	q.running = true
	q.stopCh = make(chan struct{})
	log.Infof("[PushQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop stops the queue workers after draining in-flight sends
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}

	log.Info("[PushQueue] Stopping workers...")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[PushQueue] All workers stopped")
}

// Enqueue queues one push send per subscription and returns immediately.
// The caller never waits for delivery.
func (q *Queue) Enqueue(storeID string, subs []models.PushSubscription, payload push.Payload) {
	for _, sub := range subs {
		job := Job{
			ID:           uuid.New().String(),
			StoreID:      storeID,
			Subscription: sub,
			Payload:      payload,
			EnqueuedAt:   time.Now(),
		}
		select {
		case q.jobs <- job:
			q.enqueued.Add(1)
		default:
			q.dropped.Add(1)
			log.Warnf("[PushQueue] Buffer full, dropping send for store %s", storeID)
		}
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log.Infof("[PushQueue] Worker %d started", id)

	for {
		select {
		case <-q.stopCh:
			log.Infof("[PushQueue] Worker %d stopping", id)
			return
		case job := <-q.jobs:
			q.processJob(job)
		}
	}
}

func (q *Queue) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	err := q.sender.Send(ctx, job.Subscription, job.Payload)
	switch {
	case err == nil:
		q.completed.Add(1)
	case errors.Is(err, push.ErrPermanentRejection):
		// Advisory only: the subscription stays registered, cleanup is manual.
		q.rejected.Add(1)
		log.Warnf("[PushQueue] Job %s: endpoint permanently rejected, subscription kept: %v", job.ID, err)
	default:
		q.failed.Add(1)
		log.Errorf("[PushQueue] Job %s failed: %v", job.ID, err)
	}
}

// GetStats returns outcome counters since the queue was created
func (q *Queue) GetStats() Stats {
	return Stats{
		Enqueued:  q.enqueued.Load(),
		Completed: q.completed.Load(),
		Failed:    q.failed.Load(),
		Rejected:  q.rejected.Load(),
		Dropped:   q.dropped.Load(),
	}
}

// GetQueueSize returns the number of pending sends
func (q *Queue) GetQueueSize() int {
	return len(q.jobs)
}
