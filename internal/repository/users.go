package repository

import (
	"context"
	"database/sql"
	"fmt"

	"alumhub/internal/database"
	"alumhub/internal/models"
)

type UserRepository struct {
	db   *database.DB
	seqs *SequenceRepository
}

func NewUserRepository(db *database.DB, seqs *SequenceRepository) *UserRepository {
	return &UserRepository{db: db, seqs: seqs}
}

// CreateWithSequences inserts the account and allocates its registration
// numbers in one transaction. If either allocation fails the account is not
// created; no partially numbered accounts exist.
func (r *UserRepository) CreateWithSequences(ctx context.Context, user *models.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	globalNo, err := r.seqs.AllocateTx(ctx, tx, GlobalScope)
	if err != nil {
		return fmt.Errorf("failed to allocate global registration number: %w", err)
	}
	user.RegNoGlobal = &globalNo

	if user.GraduationYear > 0 {
		cohortNo, err := r.seqs.AllocateTx(ctx, tx, user.GraduationYear)
		if err != nil {
			return fmt.Errorf("failed to allocate cohort registration number: %w", err)
		}
		user.RegNoCohort = &cohortNo
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, name, phone, role, graduation_year,
		                   reg_no_global, reg_no_cohort)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, is_active, created_at, updated_at`,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.Role,
		user.GraduationYear,
		user.RegNoGlobal,
		user.RegNoCohort,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

const userColumns = `id, email, password_hash, name, COALESCE(phone, ''), role,
       graduation_year, reg_no_global, reg_no_cohort, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Phone,
		&user.Role,
		&user.GraduationYear,
		&user.RegNoGlobal,
		&user.RegNoCohort,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// SetRole updates a user's role.
func (r *UserRepository) SetRole(ctx context.Context, id int64, role string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}
