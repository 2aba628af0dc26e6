package runtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/aowss/orderbook/pkg/matchcore"
)

// job is a unit of work bound to exactly one symbol's engine. Every job for
// a given symbol runs on that symbol's dedicated goroutine, in submission
// order, which is what lets a read like FillAsks observe a consistent
// engine state without the core itself needing any locking (spec.md §5).
type job func(*matchcore.Engine)

type engineWorker struct {
	engine *matchcore.Engine
	queue  chan job
	broken atomic.Bool // set once Dispatch returns a matchcore.FatalError for this symbol
}

// Multiplexer owns one Engine per symbol and fans work out to a bounded
// ants.Pool of goroutines, one dedicated per registered symbol, preserving
// the "single-threaded cooperative per symbol" contract spec.md §5 demands
// while still letting many symbols run concurrently with each other.
type Multiplexer struct {
	mu      sync.RWMutex
	workers map[string]*engineWorker
	pool    *ants.Pool
	logger  *zap.Logger
}

// NewMultiplexer creates a multiplexer whose underlying pool can run up to
// maxSymbols symbols' worker goroutines concurrently.
func NewMultiplexer(maxSymbols int, logger *zap.Logger) (*Multiplexer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSymbols <= 0 {
		maxSymbols = 64
	}
	pool, err := ants.NewPool(maxSymbols)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Multiplexer{
		workers: make(map[string]*engineWorker),
		pool:    pool,
		logger:  logger,
	}, nil
}

// Register creates an Engine for symbol and starts its dedicated worker
// loop on the shared pool. Registering the same symbol name twice is an
// error.
func (m *Multiplexer) Register(symbol matchcore.Symbol) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.workers[symbol.Name]; exists {
		return fmt.Errorf("symbol %q already registered", symbol.Name)
	}

	w := &engineWorker{
		engine: matchcore.NewEngine(symbol, m.logger.With(zap.String("symbol", symbol.Name))),
		queue:  make(chan job, 1024),
	}
	m.workers[symbol.Name] = w

	if err := m.pool.Submit(func() { m.run(w) }); err != nil {
		delete(m.workers, symbol.Name)
		return fmt.Errorf("submit worker for %q: %w", symbol.Name, err)
	}
	return nil
}

func (m *Multiplexer) run(w *engineWorker) {
	for fn := range w.queue {
		fn(w.engine)
	}
}

// Dispatch routes one wire command to symbol's engine and blocks until it
// has been processed, or ctx is cancelled first. A matchcore.FatalError
// (spec.md §7 tier 3) permanently retires that symbol's worker: the engine
// itself warns callers to stop routing to it once this happens, and every
// Dispatch/RunOnEngine call afterward fails fast instead of reaching it.
func (m *Multiplexer) Dispatch(ctx context.Context, symbol string, buf []byte, offset int, timestamp int64, out *matchcore.Writer) error {
	m.mu.RLock()
	w, ok := m.workers[symbol]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown symbol %q", symbol)
	}
	if w.broken.Load() {
		return fmt.Errorf("symbol %q engine is retired after a fatal error", symbol)
	}

	done := make(chan error, 1)
	err := m.enqueueTo(ctx, w, func(e *matchcore.Engine) {
		done <- e.Dispatch(buf, offset, timestamp, out)
	})
	if err != nil {
		return err
	}
	select {
	case err := <-done:
		if matchcore.IsFatal(err) {
			w.broken.Store(true)
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnEngine queues fn to run on symbol's dedicated goroutine and blocks
// until it completes. Used for read-only admin operations (L2 snapshot,
// FindUserOrders, VerifyInternalState) that must observe a consistent
// state rather than race with the mutating worker loop.
func (m *Multiplexer) RunOnEngine(ctx context.Context, symbol string, fn func(*matchcore.Engine)) error {
	done := make(chan struct{})
	err := m.enqueue(ctx, symbol, func(e *matchcore.Engine) {
		fn(e)
		close(done)
	})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Multiplexer) enqueue(ctx context.Context, symbol string, fn job) error {
	m.mu.RLock()
	w, ok := m.workers[symbol]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown symbol %q", symbol)
	}
	if w.broken.Load() {
		return fmt.Errorf("symbol %q engine is retired after a fatal error", symbol)
	}
	return m.enqueueTo(ctx, w, fn)
}

func (m *Multiplexer) enqueueTo(ctx context.Context, w *engineWorker, fn job) error {
	select {
	case w.queue <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Symbols lists every currently registered symbol name.
func (m *Multiplexer) Symbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.workers))
	for name := range m.workers {
		out = append(out, name)
	}
	return out
}

// Close releases the underlying pool. In-flight and queued jobs are not
// drained first; callers should stop submitting before calling Close.
func (m *Multiplexer) Close() {
	m.pool.Release()
}
