package application

import "context"

// UnitOfWork provides a minimal transaction boundary using context propagation.
// Writes made through the context passed to fn become visible together or not at all.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
