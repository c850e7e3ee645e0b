// Package queue decouples answer submission from evaluation: handlers enqueue
// an answer identifier and a worker pool consumes it, so the lifecycle of an
// evaluation is never tied to the request that triggered it.
package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Evaluator runs one complete evaluation attempt for an answer.
type Evaluator interface {
	Evaluate(ctx context.Context, answerID uint)
}

// Config tunes the evaluation queue.
type Config struct {
	// Workers is the number of consumer goroutines. The LLM client applies its
	// own concurrency permit, so extra workers only overlap the non-network
	// parts of an evaluation.
	Workers int
	// Buffer is the job channel capacity. Enqueue blocks once it fills.
	Buffer int
	Logger zerolog.Logger
}

// Queue is a buffered in-process work queue feeding the evaluator.
type Queue struct {
	evaluator Evaluator
	jobs      chan uint
	workers   int
	wg        sync.WaitGroup
	stop      chan struct{}
	stopOnce  sync.Once
	logger    zerolog.Logger
}

// New constructs a queue. Start must be called before jobs are consumed.
func New(evaluator Evaluator, cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 100
	}

	return &Queue{
		evaluator: evaluator,
		jobs:      make(chan uint, cfg.Buffer),
		workers:   cfg.Workers,
		stop:      make(chan struct{}),
		logger:    cfg.Logger.With().Str("component", "evaluation_queue").Logger(),
	}
}

// Start launches the worker pool. Workers run until Stop is called or the
// context is cancelled.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx, i+1)
	}

	q.logger.Info().Int("workers", q.workers).Msg("evaluation queue started")
}

// Stop shuts the pool down, waiting for in-flight evaluations to finish.
// Jobs still buffered when Stop is called are dropped; their answers simply
// remain pending.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stop)
	})
	q.wg.Wait()
	q.logger.Info().Msg("evaluation queue stopped")
}

// Enqueue hands an answer to the pool in FIFO order. It blocks while the
// buffer is full and reports false once the queue is shutting down.
func (q *Queue) Enqueue(answerID uint) bool {
	select {
	case <-q.stop:
		q.logger.Warn().Uint("answer_id", answerID).Msg("queue stopped, dropping job")
		return false
	default:
	}

	select {
	case q.jobs <- answerID:
		return true
	case <-q.stop:
		q.logger.Warn().Uint("answer_id", answerID).Msg("queue stopped, dropping job")
		return false
	}
}

func (q *Queue) work(ctx context.Context, workerID int) {
	defer q.wg.Done()

	for {
		select {
		case <-q.stop:
			return
		case <-ctx.Done():
			return
		case answerID := <-q.jobs:
			q.logger.Debug().Int("worker", workerID).Uint("answer_id", answerID).Msg("processing evaluation job")
			q.evaluator.Evaluate(ctx, answerID)
		}
	}
}
