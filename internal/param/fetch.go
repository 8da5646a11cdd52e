package param

import "context"

// Fetcher returns the values of every parameter stored under a path.
type Fetcher interface {
	FetchAll(context.Context, string) ([]string, error)
}
