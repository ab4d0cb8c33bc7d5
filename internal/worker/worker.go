// Package worker provides the background processor that delivers low stock alerts off the request path.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nadmax/servicetime/internal/metrics"
	"github.com/nadmax/servicetime/internal/notify"
)

const (
	defaultMaxRetries  = 3
	defaultRetryDelay  = 10 * time.Second
	defaultBufferSize  = 64
	defaultSendTimeout = 30 * time.Second
)

type Worker struct {
	id         string
	sender     notify.Sender
	alerts     chan notify.Alert
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
	maxRetries int
	retryDelay time.Duration
}

func NewWorker(id string, sender notify.Sender) *Worker {
	return &Worker{
		id:         id,
		sender:     sender,
		alerts:     make(chan notify.Alert, defaultBufferSize),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
}

func (w *Worker) SetRetryDelay(d time.Duration) {
	w.retryDelay = d
}

func (w *Worker) SetMaxRetries(n int) {
	w.maxRetries = max(1, n)
}

// Submit queues an alert without blocking. It reports false when the buffer
// is full or the worker has been stopped.
func (w *Worker) Submit(alert notify.Alert) bool {
	select {
	case <-w.stop:
		return false
	default:
	}

	select {
	case w.alerts <- alert:
		return true
	default:
		log.Printf("Worker %s dropped low stock alert for %s: buffer full", w.id, alert.Model)
		metrics.RecordAlertFailed()
		return false
	}
}

// Start blocks until Stop is called. Alerts still buffered at that point are
// given a single delivery attempt.
func (w *Worker) Start() {
	log.Printf("Worker %s started", w.id)
	defer close(w.done)

	for {
		select {
		case <-w.stop:
			w.drain()
			log.Printf("Worker %s stopped", w.id)
			return
		case alert := <-w.alerts:
			w.processAlert(alert)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case alert := <-w.alerts:
			w.processAlert(alert)
		default:
			return
		}
	}
}

func (w *Worker) processAlert(alert notify.Alert) {
	log.Printf("Worker %s sending low stock alert for %s", w.id, alert.Model)

	for attempt := 1; ; attempt++ {
		err := w.send(alert)
		if err == nil {
			metrics.RecordAlertSent()
			log.Printf("Low stock alert for %s delivered", alert.Model)
			return
		}

		if attempt >= w.maxRetries {
			metrics.RecordAlertFailed()
			log.Printf("Low stock alert for %s failed permanently: %v", alert.Model, err)
			return
		}

		metrics.RecordAlertRetried()
		log.Printf("Low stock alert for %s failed, will retry (%d/%d): %v", alert.Model, attempt, w.maxRetries, err)

		select {
		case <-time.After(time.Duration(attempt) * w.retryDelay):
		case <-w.stop:
			metrics.RecordAlertFailed()
			log.Printf("Low stock alert for %s abandoned on shutdown", alert.Model)
			return
		}
	}
}

func (w *Worker) send(alert notify.Alert) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSendTimeout)
	defer cancel()

	return w.sender.Send(ctx, alert)
}

// Stop signals the worker and waits for Start to return.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}
