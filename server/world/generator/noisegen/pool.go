package noisegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrPoolClosed is returned for chunks submitted to, or still queued in, a
	// Pool that was closed.
	ErrPoolClosed = errors.New("generator pool closed")
	// ErrGenerationPanic is returned for chunks whose generation panicked.
	ErrGenerationPanic = errors.New("chunk generation panicked")
)

// PoolConfig holds the settings of a Pool.
type PoolConfig struct {
	// Log is the Logger used to report panics and a saturated queue. If nil,
	// Log is set to slog.Default().
	Log *slog.Logger
	// Workers is the number of goroutines generating chunks. If 0, Workers is
	// set to runtime.NumCPU().
	Workers int
	// QueueSize is the number of chunks that may be queued before Submit
	// blocks. If 0, QueueSize is set to 4 times Workers.
	QueueSize int
}

// Result is the outcome of generating a chunk in a Pool.
type Result struct {
	Pos   ChunkPos
	Chunk *Chunk
	Err   error
}

type generationTask struct {
	pos    ChunkPos
	result chan<- Result
}

// Pool generates chunks on a fixed number of worker goroutines. Each worker
// owns a private Generator, so workers never contend on caches.
type Pool struct {
	conf PoolConfig
	st   *RandomState

	queue   chan generationTask
	closing chan struct{}
	once    sync.Once
	running sync.WaitGroup

	// queueSaturation counts how often Submit found the queue full. It is used
	// to rate-limit backpressure warnings.
	queueSaturation        atomic.Uint64
	lastQueueSaturationLog atomic.Uint64
}

// New creates a Pool generating chunks for the state passed and starts its
// workers.
func (conf PoolConfig) New(st *RandomState) *Pool {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Workers <= 0 {
		conf.Workers = runtime.NumCPU()
	}
	if conf.QueueSize <= 0 {
		conf.QueueSize = conf.Workers * 4
	}
	p := &Pool{
		conf:    conf,
		st:      st,
		queue:   make(chan generationTask, conf.QueueSize),
		closing: make(chan struct{}),
	}
	p.running.Add(conf.Workers)
	for i := 0; i < conf.Workers; i++ {
		go p.generatorWorker()
	}
	return p
}

// Submit queues the chunk at pos for generation. The Result is sent on the
// channel returned once the chunk is generated. Submit blocks while the queue is
// full; ctx only bounds that wait and does not cancel generation of a queued
// chunk.
func (p *Pool) Submit(ctx context.Context, pos ChunkPos) (<-chan Result, error) {
	result := make(chan Result, 1)
	task := generationTask{pos: pos, result: result}

	select {
	case <-p.closing:
		return nil, ErrPoolClosed
	default:
	}
	select {
	case p.queue <- task:
		return result, nil
	default:
		// The queue is full: wait for space, but report the backlog.
		p.handleGeneratorBackpressure()
	}
	select {
	case <-p.closing:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case p.queue <- task:
		return result, nil
	}
}

// Close stops the workers after the chunks they are generating. Chunks still
// queued are answered with ErrPoolClosed. Close blocks until every worker has
// stopped and may be called more than once, but not concurrently with Submit.
func (p *Pool) Close() error {
	p.once.Do(func() {
		close(p.closing)
	})
	p.running.Wait()
	p.drainGenerationQueue()
	return nil
}

// generatorWorker processes tasks from the queue until the pool is closed, then
// drains the queue so that no caller waits forever.
func (p *Pool) generatorWorker() {
	defer p.running.Done()

	gen := p.st.NewGenerator()
	for {
		select {
		case task := <-p.queue:
			if !p.runGenerationTask(gen, task) {
				// A panic may leave the caches of the generator half written.
				gen = p.st.NewGenerator()
			}
		case <-p.closing:
			p.drainGenerationQueue()
			return
		}
	}
}

// runGenerationTask generates the chunk of a task and always sends a Result,
// also if generation panics. It returns false if it recovered from a panic.
func (p *Pool) runGenerationTask(gen *Generator, task generationTask) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.conf.Log.Error(
				"generate chunk: panic",
				"error", fmt.Sprint(r),
				"X", task.pos[0],
				"Z", task.pos[1],
			)
			task.result <- Result{Pos: task.pos, Err: fmt.Errorf("%w: %v", ErrGenerationPanic, r)}
			ok = false
		}
	}()
	task.result <- Result{Pos: task.pos, Chunk: gen.Generate(task.pos)}
	return true
}

// drainGenerationQueue answers every task left in the queue with ErrPoolClosed.
func (p *Pool) drainGenerationQueue() {
	for {
		select {
		case task := <-p.queue:
			task.result <- Result{Pos: task.pos, Err: ErrPoolClosed}
		default:
			return
		}
	}
}

// handleGeneratorBackpressure counts a saturated queue and emits a warning at
// most once a minute.
func (p *Pool) handleGeneratorBackpressure() {
	count := p.queueSaturation.Add(1)
	now := uint64(time.Now().UnixNano())
	last := p.lastQueueSaturationLog.Load()

	if last != 0 && time.Duration(now-last) < time.Minute {
		return
	}
	if !p.lastQueueSaturationLog.CompareAndSwap(last, now) {
		return
	}
	p.conf.Log.Warn(
		"generator queue saturated: chunk generation backlog detected.",
		"queued_tasks", count,
		"queue_size", cap(p.queue),
		"workers", p.conf.Workers,
	)
}
