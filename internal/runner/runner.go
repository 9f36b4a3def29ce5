package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aqasim81/schema-migrate/internal/database"
	"github.com/aqasim81/schema-migrate/internal/ledger"
	"github.com/aqasim81/schema-migrate/internal/migration"
)

// Progress status constants reported via ProgressEvent.
const (
	StatusStarting  = "starting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// ProgressEvent is emitted for each migration processed.
// Dry runs emit StatusSkipped only.
type ProgressEvent struct {
	ID        string
	Direction migration.Direction
	Status    string
	Duration  time.Duration
	Error     error
}

// Ledger abstracts schema_migrations operations for testability.
// Record calls receive the migration's own transaction.
type Ledger interface {
	EnsureInitialized(ctx context.Context) error
	Applied(ctx context.Context) ([]ledger.Entry, error)
	RecordApplied(ctx context.Context, q database.Querier, name string) error
	RecordReverted(ctx context.Context, q database.Querier, name string) error
}

// Source lists and loads migration files.
type Source interface {
	List() ([]string, error)
	Load(id string) (migration.Migration, error)
}

// Result describes the migrations an Up or Down call ran, in execution order.
type Result struct {
	Direction  migration.Direction
	Migrations []string
	DryRun     bool
}

// Runner applies and reverses migrations one at a time over a single connection.
type Runner struct {
	conn             database.Conn
	ledger           Ledger
	source           Source
	log              *zap.Logger
	onProgress       func(ProgressEvent)
	dryRun           bool
	lockTimeout      time.Duration
	statementTimeout time.Duration
	outOfOrder       OutOfOrderPolicy
}

// New creates a Runner. conn must stay open for the Runner's lifetime.
func New(conn database.Conn, l Ledger, src Source, opts ...Option) *Runner {
	r := &Runner{
		conn:       conn,
		ledger:     l,
		source:     src,
		log:        zap.NewNop(),
		outOfOrder: OutOfOrderWarn,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Up applies every pending migration in identifier order, each in its own
// transaction together with its ledger row. It stops at the first failure;
// migrations applied before it stay applied.
func (r *Runner) Up(ctx context.Context) (*Result, error) {
	res := &Result{Direction: migration.Up, DryRun: r.dryRun}

	if err := r.ledger.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	entries, err := r.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := r.source.List()
	if err != nil {
		return nil, err
	}

	pending := pendingIDs(ids, entries)
	if len(pending) == 0 {
		r.log.Info("no pending migrations")

		return res, nil
	}

	if err := r.checkOrder(pending, entries); err != nil {
		return nil, err
	}

	return r.execute(ctx, res, pending)
}

// Down reverses the steps most recently applied migrations, newest first.
// steps larger than the number applied reverses everything.
func (r *Runner) Down(ctx context.Context, steps int) (*Result, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSteps, steps)
	}

	res := &Result{Direction: migration.Down, DryRun: r.dryRun}

	if err := r.ledger.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	entries, err := r.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		r.log.Info("no migrations to rollback")

		return res, nil
	}

	ids := make([]string, 0, min(steps, len(entries)))
	for i := len(entries) - 1; i >= 0 && len(ids) < steps; i-- {
		ids = append(ids, entries[i].Name)
	}

	return r.execute(ctx, res, ids)
}

// pendingIDs returns ids absent from entries, keeping the order of ids.
func pendingIDs(ids []string, entries []ledger.Entry) []string {
	applied := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		applied[e.Name] = struct{}{}
	}

	var pending []string

	for _, id := range ids {
		if _, ok := applied[id]; !ok {
			pending = append(pending, id)
		}
	}

	return pending
}

// checkOrder applies the out-of-order policy to pending.
func (r *Runner) checkOrder(pending []string, entries []ledger.Entry) error {
	var newest string

	for _, e := range entries {
		if e.Name > newest {
			newest = e.Name
		}
	}

	var early []string

	for _, id := range pending {
		if id < newest {
			early = append(early, id)
		}
	}

	if len(early) == 0 {
		return nil
	}

	if r.outOfOrder == OutOfOrderReject {
		return fmt.Errorf("%w: %s sort before applied migration %s",
			ErrOutOfOrder, strings.Join(early, ", "), newest)
	}

	for _, id := range early {
		r.log.Warn("Applying migration out of order",
			zap.String("migration", id),
			zap.String("newest_applied", newest),
		)
	}

	return nil
}

// load reads migration id and checks its block for dir. It runs before the
// migration's transaction opens, so a bad file never reaches the database.
func (r *Runner) load(id string, dir migration.Direction) (migration.Migration, error) {
	m, err := r.source.Load(id)
	if err != nil {
		return migration.Migration{}, err
	}

	if err := r.checkTransactional(m.Block(dir)); err != nil {
		return migration.Migration{}, err
	}

	return m, nil
}

// execute loads and runs ids in order, stopping at the first failure.
// Migrations finished before the failure stay in res.
func (r *Runner) execute(ctx context.Context, res *Result, ids []string) (*Result, error) {
	for _, id := range ids {
		m, err := r.load(id, res.Direction)
		if err != nil {
			r.log.Error("Migration failed",
				zap.String("migration", id),
				zap.String("direction", string(res.Direction)),
				zap.Error(err),
			)

			return res, &MigrationError{ID: id, Direction: res.Direction, Err: err}
		}

		if r.dryRun {
			r.log.Info("Would run migration",
				zap.String("migration", m.ID),
				zap.String("direction", string(res.Direction)),
			)
			r.fireProgress(ProgressEvent{ID: m.ID, Direction: res.Direction, Status: StatusSkipped})
			res.Migrations = append(res.Migrations, m.ID)

			continue
		}

		if err := r.runOne(ctx, &m, res.Direction); err != nil {
			return res, err
		}

		res.Migrations = append(res.Migrations, m.ID)
	}

	return res, nil
}

// runOne executes one block and its ledger write in a single transaction.
func (r *Runner) runOne(ctx context.Context, m *migration.Migration, dir migration.Direction) error {
	log := r.log.With(zap.String("migration", m.ID), zap.String("direction", string(dir)))

	if dir == migration.Down {
		log.Info("Reverting migration")
	} else {
		log.Info("Applying migration")
	}

	r.fireProgress(ProgressEvent{ID: m.ID, Direction: dir, Status: StatusStarting})

	start := time.Now()
	err := r.execInTransaction(ctx, func(tx database.Tx) error {
		if err := r.setTimeouts(ctx, tx); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, m.Block(dir)); err != nil {
			return fmt.Errorf("%w: %w", ErrExecution, err)
		}

		if dir == migration.Down {
			return r.ledger.RecordReverted(ctx, tx, m.ID)
		}

		return r.ledger.RecordApplied(ctx, tx, m.ID)
	})
	duration := time.Since(start)

	if err != nil {
		log.Error("Migration failed", zap.Duration("duration", duration), zap.Error(err))
		r.fireProgress(ProgressEvent{
			ID:        m.ID,
			Direction: dir,
			Status:    StatusFailed,
			Duration:  duration,
			Error:     err,
		})

		return &MigrationError{ID: m.ID, Direction: dir, Err: err}
	}

	if dir == migration.Down {
		log.Info("Reverted migration", zap.Duration("duration", duration))
	} else {
		log.Info("Applied migration", zap.Duration("duration", duration))
	}

	r.fireProgress(ProgressEvent{ID: m.ID, Direction: dir, Status: StatusCompleted, Duration: duration})

	return nil
}

func (r *Runner) fireProgress(event ProgressEvent) {
	if r.onProgress != nil {
		r.onProgress(event)
	}
}
