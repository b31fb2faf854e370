package domain

import "context"

// Category is an event category. Category management is owned elsewhere;
// the core only resolves references.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryRepository defines read access to categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*Category, error)
}
