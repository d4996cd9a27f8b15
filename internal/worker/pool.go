// Package worker provides background processing for batch match jobs.
package worker

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/calliope-labs/cratematch/internal/core/domain"
	"github.com/calliope-labs/cratematch/internal/core/ports"
	"github.com/calliope-labs/cratematch/internal/metrics"
)

// Job represents one queued match run.
type Job struct {
	ID      string
	Request domain.MatchRequest
}

// NewJob wraps a request with a fresh job ID.
func NewJob(req domain.MatchRequest) Job {
	return Job{ID: uuid.NewString(), Request: req}
}

// Pool manages background workers for batch matching.
type Pool struct {
	engine ports.MatchEngine
	met    *metrics.Metrics
	jobs   chan Job
	wg     sync.WaitGroup
}

// NewPool creates a worker pool with the given queue size.
func NewPool(engine ports.MatchEngine, met *metrics.Metrics, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{engine: engine, met: met, jobs: make(chan Job, queueSize)}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a job without blocking. It reports whether the job was
// accepted; a full queue drops the job.
func (p *Pool) Submit(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		log.Printf("WARN worker: queue full, dropping job %s (track %d)", job.ID, job.Request.TrackIndex)
		if p.met != nil {
			p.met.RecordJobDropped()
		}
		return false
	}
}

func (p *Pool) processJob(job Job) {
	res, err := p.engine.FindBestMatch(context.Background(), job.Request)
	if err != nil {
		log.Printf("WARN worker: job %s failed for track %d: %v", job.ID, job.Request.TrackIndex, err)
		return
	}
	if res.Best == nil {
		log.Printf("worker: job %s found no match for track %d (%s)", job.ID, job.Request.TrackIndex, res.StopReason)
		return
	}
	log.Printf("worker: job %s matched track %d to %s (%.1f, %s)",
		job.ID, job.Request.TrackIndex, res.Best.URL, res.Best.Total, res.Confidence)
}
