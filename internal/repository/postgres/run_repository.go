package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/puneet-chandna/hippoplace/internal/allocation"
	"github.com/puneet-chandna/hippoplace/internal/domain"
)

// Ensure RunRepository satisfies the policy layer's store interface.
var _ allocation.RunStore = (*RunRepository)(nil)

// RunRepository stores completed optimization runs in PostgreSQL.
type RunRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRunRepository creates a new PostgreSQL run repository.
func NewRunRepository(db *DB, logger *zap.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger.With(zap.String("repository", "run")),
	}
}

// Create stores a placement run.
func (r *RunRepository) Create(ctx context.Context, p *domain.Placement) error {
	mappingJSON, err := json.Marshal(p.Mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}
	unplacedJSON, err := json.Marshal(p.Unplaced)
	if err != nil {
		return fmt.Errorf("failed to marshal unplaced: %w", err)
	}
	historyJSON, err := json.Marshal(p.FitnessHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal fitness history: %w", err)
	}

	query := `
		INSERT INTO optimization_runs (
			id, profile, vm_count, host_count, best_fitness, feasible,
			iterations, converged_after, stop_reason, mapping, unplaced,
			fitness_history, elapsed_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = r.db.pool.Exec(ctx, query,
		p.RunID,
		p.Profile,
		p.VMCount,
		p.HostCount,
		p.BestFitness,
		p.Feasible,
		p.Iterations,
		p.ConvergedAfter,
		string(p.StopReason),
		mappingJSON,
		unplacedJSON,
		historyJSON,
		p.Elapsed.Milliseconds(),
		p.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to store run", zap.Error(err), zap.String("run_id", p.RunID))
		return fmt.Errorf("failed to insert run: %w", err)
	}

	r.logger.Info("Stored optimization run", zap.String("run_id", p.RunID))
	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(ctx context.Context, id string) (*domain.Placement, error) {
	query := `
		SELECT id, profile, vm_count, host_count, best_fitness, feasible,
		       iterations, converged_after, stop_reason, mapping, unplaced,
		       fitness_history, elapsed_ms, created_at
		FROM optimization_runs
		WHERE id = $1
	`
	rows, err := r.db.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, domain.ErrNotFound
	}
	return scanRun(rows)
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Placement, error) {
	query := `
		SELECT id, profile, vm_count, host_count, best_fitness, feasible,
		       iterations, converged_after, stop_reason, mapping, unplaced,
		       fitness_history, elapsed_ms, created_at
		FROM optimization_runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Placement
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// DeleteOlderThan removes runs created before the cutoff and returns how many
// were deleted.
func (r *RunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.pool.Exec(ctx, `DELETE FROM optimization_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRun(rows pgx.Rows) (*domain.Placement, error) {
	var (
		p            domain.Placement
		stopReason   string
		mappingJSON  []byte
		unplacedJSON []byte
		historyJSON  []byte
		elapsedMs    int64
	)

	err := rows.Scan(
		&p.RunID, &p.Profile, &p.VMCount, &p.HostCount, &p.BestFitness, &p.Feasible,
		&p.Iterations, &p.ConvergedAfter, &stopReason, &mappingJSON, &unplacedJSON,
		&historyJSON, &elapsedMs, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	p.StopReason = domain.StopReason(stopReason)
	p.Elapsed = time.Duration(elapsedMs) * time.Millisecond

	if err := json.Unmarshal(mappingJSON, &p.Mapping); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mapping: %w", err)
	}
	if err := json.Unmarshal(unplacedJSON, &p.Unplaced); err != nil {
		return nil, fmt.Errorf("failed to unmarshal unplaced: %w", err)
	}
	if err := json.Unmarshal(historyJSON, &p.FitnessHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fitness history: %w", err)
	}
	return &p, nil
}
