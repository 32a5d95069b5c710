package model

const (
	DefaultProductLimit     = 8
	DefaultTransactionLimit = 10
	MaxPageLimit            = 100
)

// PageQuery carries the page/limit/search query parameters of the list endpoints.
type PageQuery struct {
	Page   int
	Limit  int
	Search string
}

// Normalize clamps page to >= 1 and limit to [1, MaxPageLimit], using defaultLimit when unset.
func (q PageQuery) Normalize(defaultLimit int) PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// TotalPages is ceil(total / limit).
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// Page is a list response: one page of rows and the page count for the same filter.
type Page[T any] struct {
	Data       []T   `json:"data"`
	TotalPages int64 `json:"totalPages"`
}
