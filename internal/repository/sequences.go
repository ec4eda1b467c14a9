package repository

import (
	"context"
	"database/sql"

	"alumhub/internal/database"
)

// GlobalScope is the sequence scope shared by all registrations regardless
// of graduation year.
const GlobalScope = 0

// SequenceRepository allocates monotonically increasing registration numbers
// scoped by graduation year. Scope 0 is the global sequence.
type SequenceRepository struct {
	db *database.DB
}

func NewSequenceRepository(db *database.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Allocate returns the next number for the given scope. The counter row is
// created lazily on first use. The increment runs as a single statement so
// concurrent allocations for the same scope never observe the same value.
func (r *SequenceRepository) Allocate(ctx context.Context, scope int) (int, error) {
	return allocateSequence(ctx, r.db, scope)
}

// AllocateTx is Allocate inside an existing transaction, used by account
// creation so a failed allocation aborts the whole registration.
func (r *SequenceRepository) AllocateTx(ctx context.Context, tx *sql.Tx, scope int) (int, error) {
	return allocateSequence(ctx, tx, scope)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func allocateSequence(ctx context.Context, q queryRower, scope int) (int, error) {
	query := `
		INSERT INTO registration_sequences (year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (year)
		DO UPDATE SET last_number = registration_sequences.last_number + 1
		RETURNING last_number`

	var n int
	if err := q.QueryRowContext(ctx, query, scope).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Last returns the current counter value for a scope without advancing it.
// Returns 0 when no allocation has happened yet.
func (r *SequenceRepository) Last(ctx context.Context, scope int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT last_number FROM registration_sequences WHERE year = $1`, scope).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}
