package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AntoineGS/tidybrew/internal/batch"
	"github.com/AntoineGS/tidybrew/internal/state"
)

// recordTimeout bounds a history write so a locked database cannot stall
// the batch worker.
const recordTimeout = 5 * time.Second

// recorder writes finished batches to the history store. It is shared by
// every copy of a Manager.
type recorder struct {
	store  *state.Store
	logger *slog.Logger
	host   string
	keep   int
	mu     sync.Mutex
}

// InitStateStore opens the history database at dbPath and records every
// later batch, keeping the newest keep batches.
func (m *Manager) InitStateStore(dbPath string, keep int) error {
	store, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}

	m.history.attach(store, keep, m.logger)

	return nil
}

// Close releases resources held by the Manager, including the state store.
func (m *Manager) Close() error {
	store := m.history.detach()
	if store != nil {
		return store.Close()
	}

	return nil
}

// History returns up to limit past batches, newest first.
func (m *Manager) History(ctx context.Context, limit int) ([]state.BatchRecord, error) {
	return m.history.recent(ctx, "", limit)
}

// OperationHistory returns up to limit past batches of op, newest first.
func (m *Manager) OperationHistory(ctx context.Context, op batch.Operation, limit int) ([]state.BatchRecord, error) {
	return m.history.recent(ctx, op.String(), limit)
}

func (r *recorder) recent(ctx context.Context, operation string, limit int) ([]state.BatchRecord, error) {
	r.mu.Lock()
	store := r.store
	r.mu.Unlock()

	if store == nil {
		return nil, ErrHistoryDisabled
	}

	return store.RecentBatchesFor(ctx, operation, limit)
}

func (r *recorder) attach(store *state.Store, keep int, logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store = store
	r.keep = keep
	r.logger = logger
}

func (r *recorder) detach() *state.Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	store := r.store
	r.store = nil

	return store
}

// record runs on the batch worker. Failures are logged and never affect the
// batch result.
func (r *recorder) record(result batch.Result, started time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store == nil {
		return
	}

	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	rec := recordFromResult(result, started, time.Now(), r.host)

	id, err := r.store.SaveBatch(ctx, rec)
	if err != nil {
		logger.Warn("failed to record batch", slog.String("error", err.Error()))
		return
	}

	if err := r.store.PruneHistory(ctx, r.keep); err != nil {
		logger.Warn("failed to prune history", slog.String("error", err.Error()))
	}

	logger.Debug("recorded batch", slog.Int64("id", id), slog.String("op", rec.Operation))
}

func recordFromResult(result batch.Result, started, finished time.Time, host string) state.BatchRecord {
	outcomes := make([]state.Outcome, 0, result.Total())

	for _, name := range result.Succeeded {
		outcomes = append(outcomes, state.Outcome{Package: name, OK: true})
	}

	for _, name := range result.Failed {
		outcomes = append(outcomes, state.Outcome{Package: name, Detail: result.Details[name]})
	}

	return state.BatchRecord{
		Operation:  result.Operation.String(),
		Host:       host,
		StartedAt:  started,
		FinishedAt: finished,
		Outcomes:   outcomes,
	}
}
