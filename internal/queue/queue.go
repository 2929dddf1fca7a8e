package queue

import (
	"log"
	"sync"
	"time"
)

type Job struct {
	Fn   func() error
	Errc chan error
}

type RequestQueueManager struct {
	JobQueue   chan Job
	MaxWorkers int
	wg         sync.WaitGroup
}

func NewRequestQueueManager(queueSize int, maxWorkers int) *RequestQueueManager {
	manager := &RequestQueueManager{
		JobQueue:   make(chan Job, queueSize),
		MaxWorkers: maxWorkers,
	}
	manager.startWorkers()
	return manager
}

func (rqm *RequestQueueManager) startWorkers() {
	for i := 0; i < rqm.MaxWorkers; i++ {
		rqm.wg.Add(1)
		go func(workerID int) {
			defer rqm.wg.Done()
			for job := range rqm.JobQueue {
				err := job.Fn()
				if job.Errc != nil {
					job.Errc <- err
				}
			}
		}(i)
	}
}

func (rqm *RequestQueueManager) EnqueueJob(job Job) {
	rqm.JobQueue <- job
}

// EnqueueWithRetry runs fn up to attempts times with a fixed backoff between
// tries. Failures are logged under the given label; the final error is not
// surfaced to any caller. Used for optimistic writes that must not block or
// roll back the in-memory state that already advanced; when the queue is
// full the job is dropped and logged rather than blocking the caller.
func (rqm *RequestQueueManager) EnqueueWithRetry(label string, attempts int, backoff time.Duration, fn func() error) {
	if attempts < 1 {
		attempts = 1
	}
	job := Job{
		Fn: func() error {
			var err error
			for i := 0; i < attempts; i++ {
				if err = fn(); err == nil {
					return nil
				}
				log.Printf("%s: attempt %d/%d failed: %v", label, i+1, attempts, err)
				if i < attempts-1 {
					time.Sleep(backoff)
				}
			}
			return err
		},
	}
	select {
	case rqm.JobQueue <- job:
	default:
		log.Printf("%s: job queue full, dropping write", label)
	}
}

func (rqm *RequestQueueManager) Shutdown() {
	close(rqm.JobQueue)
	rqm.wg.Wait()
}
