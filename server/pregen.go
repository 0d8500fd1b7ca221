// Package server implements a service that pre-generates the terrain of a
// dimension and stores it in a chunk store.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dm-vev/adamant-worldgen/server/world/chunkstore"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen"
	"github.com/google/uuid"
)

// ErrGenerationFailed is returned by Run when one or more chunks could not be
// generated or stored.
var ErrGenerationFailed = errors.New("chunk generation failed")

// Pregenerator generates a square of chunks around a centre and stores them.
// Chunks already present in the store are skipped, so an interrupted run may
// be resumed by running it again.
type Pregenerator struct {
	conf  Config
	state *noisegen.RandomState

	store     *chunkstore.DB
	ownsStore bool
}

// Summary describes a finished run.
type Summary struct {
	// Run is the id of the run, also found in its log records.
	Run uuid.UUID
	// Total is the number of chunks in the square. Generated, Skipped and
	// Failed add up to Total unless the run was cancelled.
	Total, Generated, Skipped, Failed int
	Duration                         time.Duration
}

// Run generates every chunk of the square through a pool of workers and
// writes them to the store in batches. Progress is logged every tenth of the
// square. Run stops submitting chunks once ctx is cancelled, stores the chunks
// already generated and returns ctx.Err().
func (p *Pregenerator) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	sum := Summary{Run: uuid.New()}
	log := p.conf.Log.With("run", sum.Run.String(), "dimension", p.conf.Dimension)

	positions := p.positions()
	sum.Total = len(positions)
	log.Info("Pre-generation started.", "chunks", sum.Total, "workers", p.conf.Workers, "X", p.conf.Center.X(), "Z", p.conf.Center.Z())

	pool := noisegen.PoolConfig{Log: log, Workers: p.conf.Workers, QueueSize: p.conf.QueueSize}.New(p.state)
	defer pool.Close()

	pending := make(chan submission, p.conf.Workers*2)
	submitErr := make(chan error, 1)
	go func() {
		defer close(pending)
		submitErr <- p.submit(ctx, pool, positions, pending)
	}()

	var (
		batch      = make([]*noisegen.Chunk, 0, p.conf.BatchSize)
		failures   []error
		lastTenths int
	)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := p.store.SaveBatch(p.conf.Dimension, batch); err != nil {
			log.Error("Could not store chunks.", "error", err, "chunks", len(batch))
			sum.Generated -= len(batch)
			sum.Failed += len(batch)
			failures = append(failures, err)
		}
		batch = batch[:0]
	}
	for s := range pending {
		if s.result == nil {
			log.Debug("Chunk already stored, skipping.", "X", s.pos.X(), "Z", s.pos.Z())
			sum.Skipped++
			lastTenths = p.logProgress(log, sum, lastTenths, start)
			continue
		}
		r := <-s.result
		if r.Err != nil {
			log.Error("Could not generate chunk.", "error", r.Err, "X", r.Pos.X(), "Z", r.Pos.Z())
			sum.Failed++
			failures = append(failures, r.Err)
		} else {
			sum.Generated++
			batch = append(batch, r.Chunk)
			if len(batch) == cap(batch) {
				flush()
			}
		}
		lastTenths = p.logProgress(log, sum, lastTenths, start)
	}
	flush()
	err := <-submitErr
	sum.Duration = time.Since(start)

	log.Info("Pre-generation finished.", "generated", sum.Generated, "skipped", sum.Skipped,
		"failed", sum.Failed, "duration", sum.Duration.Round(time.Millisecond))
	if err != nil {
		return sum, err
	}
	if len(failures) > 0 {
		return sum, fmt.Errorf("%w: %v of %v chunks: %w", ErrGenerationFailed, sum.Failed, sum.Total, errors.Join(failures...))
	}
	return sum, nil
}

// submission is a chunk passed from submit to Run. A nil result marks a chunk
// that was already stored.
type submission struct {
	pos    noisegen.ChunkPos
	result <-chan noisegen.Result
}

// submit queues the chunks that are not stored yet and passes them to
// pending. It returns ctx.Err() if ctx is cancelled first, or an error if the
// store could not be read.
func (p *Pregenerator) submit(ctx context.Context, pool *noisegen.Pool, positions []noisegen.ChunkPos, pending chan<- submission) error {
	for _, pos := range positions {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := p.store.Has(p.conf.Dimension, pos)
		if err != nil {
			return fmt.Errorf("check stored chunk %v: %w", pos, err)
		}
		if ok {
			pending <- submission{pos: pos}
			continue
		}
		result, err := pool.Submit(ctx, pos)
		if err != nil {
			return err
		}
		pending <- submission{pos: pos, result: result}
	}
	return nil
}

// logProgress logs the progress of the run when it crossed another tenth of
// the chunks. It returns the number of tenths completed.
func (p *Pregenerator) logProgress(log *slog.Logger, sum Summary, lastTenths int, start time.Time) int {
	if sum.Total == 0 {
		return lastTenths
	}
	done := sum.Generated + sum.Skipped + sum.Failed
	tenths := done * 10 / sum.Total
	if tenths <= lastTenths {
		return lastTenths
	}
	log.Info("Pre-generation progress.", "percent", tenths*10, "chunks", done, "elapsed", time.Since(start).Round(time.Millisecond))
	return tenths
}

// positions returns the chunks of the square, ordered in rings from the
// centre outwards so that an interrupted run leaves a contiguous area.
func (p *Pregenerator) positions() []noisegen.ChunkPos {
	r := int32(p.conf.Radius)
	cx, cz := p.conf.Center.X(), p.conf.Center.Z()
	positions := make([]noisegen.ChunkPos, 0, (2*r+1)*(2*r+1))
	positions = append(positions, p.conf.Center)
	for ring := int32(1); ring <= r; ring++ {
		for x := -ring; x <= ring; x++ {
			positions = append(positions, noisegen.ChunkPos{cx + x, cz - ring}, noisegen.ChunkPos{cx + x, cz + ring})
		}
		for z := -ring + 1; z <= ring-1; z++ {
			positions = append(positions, noisegen.ChunkPos{cx - ring, cz + z}, noisegen.ChunkPos{cx + ring, cz + z})
		}
	}
	return positions
}

// Store returns the chunk store that generated chunks are written to.
func (p *Pregenerator) Store() *chunkstore.DB { return p.store }

// Close closes the chunk store if it was opened by Config.New.
func (p *Pregenerator) Close() error {
	if p.ownsStore {
		return p.store.Close()
	}
	return nil
}
