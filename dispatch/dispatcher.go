// Package dispatch runs blocking Argon2 hash and verify calls on a fixed pool
// of worker goroutines, so request handlers can bound how many derivations
// run at once and reject work when the queue is full.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
)

var (
	// ErrQueueFull is returned by Submit when the job buffer is at capacity.
	ErrQueueFull = errors.New("dispatch: job queue is full")

	// ErrStopped is returned by Submit after Stop.
	ErrStopped = errors.New("dispatch: dispatcher is stopped")
)

// Backend is the hashing service the workers call. *hashing.Hasher and
// *hashing.Manager both satisfy it.
type Backend interface {
	Make(password []byte) (string, error)
	Verify(encoded string, password []byte) (bool, error)
}

// Job is a closed interface: only types in this package can implement it.
type Job interface {
	execute(Backend)
}

// Options configures a Dispatcher.
type Options struct {
	// Workers is the number of worker goroutines. Default: runtime.NumCPU().
	Workers int

	// QueueSize is the job buffer length. Default: 2 x Workers.
	QueueSize int

	// Logger receives lifecycle records. Nil discards them.
	Logger *slog.Logger
}

// Dispatcher manages a fixed pool of worker goroutines that process hash
// jobs against one Backend.
type Dispatcher struct {
	backend Backend
	workers int
	log     *slog.Logger

	mu      sync.RWMutex
	stopped bool
	jobs    chan Job
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher for backend. Workers are not running
// until Start is called.
func NewDispatcher(backend Backend, opts Options) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 2 * opts.Workers
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		backend: backend,
		workers: opts.Workers,
		log:     opts.Logger,
		jobs:    make(chan Job, opts.QueueSize),
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	d.wg.Add(d.workers)
	for range d.workers {
		go d.worker()
	}
	d.log.Debug("dispatch started", slog.Int("workers", d.workers), slog.Int("queue", cap(d.jobs)))
}

// Stop closes the job channel and waits for all workers to drain. Jobs
// already queued are still executed. Stop is idempotent.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Debug("dispatch stopped")
}

// Submit enqueues a job without blocking. It returns ErrQueueFull if the
// buffer is at capacity and ErrStopped after Stop.
func (d *Dispatcher) Submit(job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	select {
	case d.jobs <- job:
		return nil
	default:
		d.log.Warn("dispatch queue full", slog.Int("queue", cap(d.jobs)))
		return ErrQueueFull
	}
}

// Hash submits a HashJob and waits for its result or for ctx to be done.
// Cancelling ctx abandons the wait; the derivation itself still runs, on a
// copy of password, so the caller may wipe its buffer as soon as Hash
// returns.
func (d *Dispatcher) Hash(ctx context.Context, password []byte) (string, error) {
	result := make(chan HashResult, 1)
	job := HashJob{Password: bytes.Clone(password), Result: result, wipe: true}
	if err := d.Submit(job); err != nil {
		clear(job.Password)
		return "", err
	}
	select {
	case r := <-result:
		return r.Hash, r.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Verify submits a VerifyJob and waits for its result or for ctx to be done.
// Like Hash, it hands the worker a copy of password.
func (d *Dispatcher) Verify(ctx context.Context, encoded string, password []byte) (bool, error) {
	result := make(chan VerifyResult, 1)
	job := VerifyJob{Password: bytes.Clone(password), StoredHash: encoded, Result: result, wipe: true}
	if err := d.Submit(job); err != nil {
		clear(job.Password)
		return false, err
	}
	select {
	case r := <-result:
		return r.Match, r.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		job.execute(d.backend)
	}
}
