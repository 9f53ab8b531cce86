// Package storage provides the durable key/value capability the session core
// persists tokens and the session record into.
package storage

import "context"

// Storage is string key/value storage that survives process restarts.
// Get reports a missing key with ok == false and a nil error.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
