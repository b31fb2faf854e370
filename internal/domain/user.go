package domain

import "context"

// UserSummary is the read-only view of a user exposed by the directory.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"-"`
}

// UserDirectory is the read-only lookup of users used to validate actors and
// enrich projections. GetByIDs is all-or-nothing: it fails with a
// NotFoundIDsError naming every missing id.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*UserSummary, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*UserSummary, error)
}
