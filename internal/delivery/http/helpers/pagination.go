package helpers

import (
	"net/http"
	"strconv"

	"afisha/internal/domain"
)

// Pagination query parameter defaults, following the from/size convention:
// size 0 means "no limit, skip from items".
const (
	DefaultFrom = 0
	DefaultSize = 10
	MaxSize     = 100
)

// ParsePage reads from and size from the request query string, clamps them to
// valid ranges, and returns domain.PageParams. Invalid or missing values fall
// back to defaults.
func ParsePage(r *http.Request) domain.PageParams {
	from := DefaultFrom
	if s := r.URL.Query().Get("from"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			from = v
		}
	}
	size := DefaultSize
	if s := r.URL.Query().Get("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			size = v
			if size > MaxSize {
				size = MaxSize
			}
		}
	}
	return domain.PageParams{From: from, Size: size}
}
