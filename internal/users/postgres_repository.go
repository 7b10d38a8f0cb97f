package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. A concurrent insert with the same email surfaces
// as ErrDuplicateEmail via the users_email_unique constraint.
func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	const query = `
		INSERT INTO users (id, name, email, password_hash, role, google_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.GoogleID,
		user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}

	return user, nil
}

// FindByEmail looks up a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT id, name, email, password_hash, role, google_id, created_at
		FROM users
		WHERE email = $1
	`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toUser(), nil
}

// FindByGoogleID looks up a user by their Google subject identifier.
func (r *PostgresRepository) FindByGoogleID(ctx context.Context, googleID string) (*User, error) {
	const query = `
		SELECT id, name, email, password_hash, role, google_id, created_at
		FROM users
		WHERE google_id = $1 AND google_id <> ''
	`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, googleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toUser(), nil
}

// List returns a page of users in creation order.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]User, error) {
	const query = `
		SELECT id, name, email, password_hash, role, google_id, created_at
		FROM users
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, err
	}

	out := make([]User, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toUser())
	}
	return out, nil
}

// Count returns the total number of users.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM users`

	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, err
	}
	return total, nil
}

// userRow is a database row representation of User.
type userRow struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	GoogleID     string    `db:"google_id"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *userRow) toUser() *User {
	return &User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         Role(r.Role),
		GoogleID:     r.GoogleID,
		CreatedAt:    r.CreatedAt,
	}
}
