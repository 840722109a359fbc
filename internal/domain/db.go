package domain

import "context"

// Database is the lifecycle surface of the storage backend. The backend owns
// its schema and applies it through Migrate.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
