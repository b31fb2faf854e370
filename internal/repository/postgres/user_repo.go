package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"afisha/internal/domain"
)

// userRepository implements the read-only UserDirectory over the users table.
type userRepository struct {
	DB *sql.DB
}

func NewUserDirectory(db *sql.DB) domain.UserDirectory {
	return &userRepository{
		DB: db,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.UserSummary, error) {
	query := `
		SELECT id, name, email
		FROM users
		WHERE id = $1
	`
	u := &domain.UserSummary{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByIDs is all-or-nothing: every unresolved id is named in the error.
func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.UserSummary, error) {
	query := `
		SELECT id, name, email
		FROM users
		WHERE id = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int64]struct{})
	users := make([]*domain.UserSummary, 0, len(ids))
	for rows.Next() {
		u := &domain.UserSummary{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		found[u.ID] = struct{}{}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.NotFoundIDsError{Entity: "users", IDs: missing}
	}
	return users, nil
}
