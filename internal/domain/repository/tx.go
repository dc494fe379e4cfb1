package repository

import "context"

// TxManager runs a function inside a single database transaction. Every
// repository call made with the context passed to fn joins that transaction;
// an error from fn rolls back every write.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
