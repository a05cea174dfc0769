package indexer

import (
	"context"
	"fmt"
	"log"
	"time"

	"plenty-analytics-indexer/internal/domain"
	"plenty-analytics-indexer/internal/observability"
	"plenty-analytics-indexer/internal/storage"
	"plenty-analytics-indexer/internal/tzkt"
)

// PoolSource supplies the current set of tracked pools.
type PoolSource interface {
	GetPools(ctx context.Context) ([]*domain.Pool, error)
}

// Checkpoint persists the outer block-walk cursor across restarts.
type Checkpoint interface {
	// Last returns the last fully processed level. The bool is false when no
	// checkpoint has been written yet.
	Last() (int64, bool, error)
	Record(level int64) error
}

// Processor walks block levels and drives each qualifying operation through
// classification, pricing and aggregation. Levels, pools within a level and
// operations within a pool are all processed strictly sequentially: the
// aggregation engine's reconciliation reads previous aggregate state before
// writing, so concurrent writers would lose updates.
type Processor struct {
	provider    tzkt.Provider
	pools       PoolSource
	classifier  *Classifier
	resolver    *Resolver
	engine      *Engine
	txns        storage.TransactionStore
	lastIndexed storage.LastIndexedStore
	checkpoint  Checkpoint
	startLevel  int64
	logger      *log.Logger
	metrics     *observability.Metrics
}

// ProcessorOptions contains configuration for creating a Processor.
type ProcessorOptions struct {
	Provider    tzkt.Provider
	Pools       PoolSource
	Classifier  *Classifier
	Resolver    *Resolver
	Engine      *Engine
	Txns        storage.TransactionStore
	LastIndexed storage.LastIndexedStore
	Checkpoint  Checkpoint
	StartLevel  int64 // first level to process when no checkpoint exists
	Logger      *log.Logger
	Metrics     *observability.Metrics
}

// NewProcessor creates a new Processor.
func NewProcessor(opts ProcessorOptions) *Processor {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Processor{
		provider:    opts.Provider,
		pools:       opts.Pools,
		classifier:  opts.Classifier,
		resolver:    opts.Resolver,
		engine:      opts.Engine,
		txns:        opts.Txns,
		lastIndexed: opts.LastIndexed,
		checkpoint:  opts.Checkpoint,
		startLevel:  opts.StartLevel,
		logger:      logger,
		metrics:     opts.Metrics,
	}
}

// Process walks levels from the checkpoint (or the configured start) up to
// and including upTo. Each fully processed level advances the checkpoint, so
// a crash resumes at the first unprocessed level.
func (p *Processor) Process(ctx context.Context, upTo int64) error {
	pools, err := p.pools.GetPools(ctx)
	if err != nil {
		return fmt.Errorf("load pools: %w", err)
	}

	from, err := p.firstLevel()
	if err != nil {
		return err
	}

	for level := from; level <= upTo; level++ {
		started := time.Now()
		for _, pool := range pools {
			if err := p.processPool(ctx, pool, level); err != nil {
				return fmt.Errorf("pool %s at level %d: %w", pool.Address, level, err)
			}
			if err := p.lastIndexed.Record(ctx, pool.Address, level); err != nil {
				return fmt.Errorf("record last indexed level for %s: %w", pool.Address, err)
			}
		}
		if err := p.checkpoint.Record(level); err != nil {
			return fmt.Errorf("record checkpoint %d: %w", level, err)
		}
		if p.metrics != nil {
			p.metrics.LevelsProcessed.Inc()
			p.metrics.LastProcessedLevel.Set(float64(level))
			p.metrics.LevelProcessingDuration.Observe(time.Since(started).Seconds())
		}
		p.logger.Printf("processed level %d", level)
	}

	return nil
}

func (p *Processor) firstLevel() (int64, error) {
	last, ok, err := p.checkpoint.Last()
	if err != nil {
		return 0, fmt.Errorf("read checkpoint: %w", err)
	}
	if !ok {
		return p.startLevel, nil
	}
	return last + 1, nil
}

func (p *Processor) processPool(ctx context.Context, pool *domain.Pool, level int64) error {
	hashes, err := p.provider.GetOperationHashes(ctx, pool.Address, pool.Generation.Entrypoints(), level)
	if err != nil {
		return err
	}

	// A batched group touching the pool several times yields its hash once
	// per touch; the per-step dedup below handles the repeats, but fetching
	// the group once avoids redundant API work.
	seen := make(map[string]struct{}, len(hashes))
	for _, hash := range hashes {
		if _, done := seen[hash]; done {
			continue
		}
		seen[hash] = struct{}{}

		steps, err := p.provider.GetOperation(ctx, hash)
		if err != nil {
			return err
		}

		// A malformed operation is abandoned wholesale and logged; the rest
		// of the level still processes.
		if err := p.processOperation(ctx, steps, pool); err != nil {
			if p.metrics != nil {
				p.metrics.OperationErrors.Inc()
			}
			p.logger.Printf("abandoning operation %s (pool %s, level %d): %v", hash, pool.Address, level, err)
		}
	}

	return nil
}

// processOperation runs every qualifying step of one operation group through
// the pipeline. An operation id seen before means the whole group was already
// recorded, aggregates included, so the group is skipped outright.
func (p *Processor) processOperation(ctx context.Context, steps []tzkt.OperationStep, pool *domain.Pool) error {
	for i := range steps {
		step := &steps[i]
		if step.Target == nil || step.Target.Address != pool.Address {
			continue
		}
		if _, ok := pool.Generation.ClassifyEntrypoint(step.Entrypoint()); !ok {
			continue
		}

		exists, err := p.txns.Exists(ctx, step.ID)
		if err != nil {
			return fmt.Errorf("idempotency check for %d: %w", step.ID, err)
		}
		if exists {
			return nil
		}

		txn, err := p.classifier.Classify(ctx, steps, i, pool)
		if err != nil {
			return fmt.Errorf("classify step %d: %w", step.ID, err)
		}
		if txn == nil {
			continue
		}

		if err := p.resolver.Resolve(ctx, txn); err != nil {
			return fmt.Errorf("price step %d: %w", step.ID, err)
		}

		if err := p.engine.Record(ctx, txn); err != nil {
			return fmt.Errorf("record step %d: %w", step.ID, err)
		}
		if p.metrics != nil {
			p.metrics.TransactionsRecorded.WithLabelValues(string(txn.Type)).Inc()
			if txn.Prices.Token1.IsZero() || txn.Prices.Token2.IsZero() {
				p.metrics.UnpricedTransactions.Inc()
			}
		}
	}

	return nil
}
