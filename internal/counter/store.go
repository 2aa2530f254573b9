// Package counter records page views and unique visitors per page.
//
// Counts live in a durable Store (Redis or SQLite). Every operation runs
// against the durable store first and, on any error, reruns in full against
// an in-process MemoryStore. The two are never merged.
package counter

import (
	"context"
	"errors"
)

// ErrInvalidRequest is returned when a request is missing its page id.
var ErrInvalidRequest = errors.New("page id is required")

// Store is the storage adapter behind the counter service. The plain
// get/set methods back the default read-modify-write path; IncrViews and
// AddVisitor back the atomic path.
type Store interface {
	Name() string

	Views(ctx context.Context, page string) (int64, error)
	SetViews(ctx context.Context, page string, n int64) error
	Visitors(ctx context.Context, page string) ([]string, error)
	SetVisitors(ctx context.Context, page string, ids []string) error
	VisitorCount(ctx context.Context, page string) (int64, error)

	// IncrViews adds one view and returns the new total.
	IncrViews(ctx context.Context, page string) (int64, error)
	// AddVisitor adds id to the page's visitor set and reports whether it
	// was new along with the resulting set size.
	AddVisitor(ctx context.Context, page, id string) (bool, int64, error)

	Pages(ctx context.Context) ([]string, error)
	DeletePage(ctx context.Context, page string) error
	DeleteAll(ctx context.Context) error
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
