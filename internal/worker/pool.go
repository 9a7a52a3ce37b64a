package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Priya8975/newsletter-delivery-system/internal/email"
)

// Result is the outcome of one delivery handled by the pool.
type Result struct {
	Recipient string
	Err       error
}

// Pool manages a fixed number of worker goroutines that deliver emails.
type Pool struct {
	numWorkers int
	jobs       chan email.Message
	deliverer  *Deliverer
	logger     *slog.Logger
	wg         sync.WaitGroup

	mu      sync.Mutex
	results []Result
}

// NewPool creates a worker pool with the given number of workers.
func NewPool(numWorkers int, deliverer *Deliverer, logger *slog.Logger) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan email.Message, numWorkers*2),
		deliverer:  deliverer,
		logger:     logger,
	}
}

// Start launches all worker goroutines. They read from the jobs channel
// until it is closed.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.logger.Debug("worker pool started", "num_workers", p.numWorkers)
}

// Submit queues a message. It blocks while the buffer is full.
func (p *Pool) Submit(msg email.Message) {
	p.jobs <- msg
}

// Stop closes the jobs channel, waits for all workers to finish and returns
// one result per submitted message.
func (p *Pool) Stop() []Result {
	close(p.jobs)
	p.wg.Wait()
	p.logger.Debug("worker pool stopped", "results", len(p.results))

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

// worker keeps draining after ctx is cancelled so Submit never blocks
// forever; remaining jobs are recorded as failed with the context error.
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for msg := range p.jobs {
		var err error
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else {
			err = p.deliverer.Deliver(ctx, msg)
		}
		p.record(Result{Recipient: msg.To, Err: err})
	}
}

func (p *Pool) record(r Result) {
	p.mu.Lock()
	p.results = append(p.results, r)
	p.mu.Unlock()
}
