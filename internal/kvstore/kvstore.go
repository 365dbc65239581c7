// Package kvstore provides the flat string-keyed persistence layer.
// Every write fully overwrites the keyed blob; there are no transactions
// and no optimistic-concurrency checks. That is safe here because the
// application has a single logical writer and at most one active session.
package kvstore

import "errors"

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a synchronous get/set/delete string store. The active workout
// session is written through it directly; the rest of application state
// goes through the JSON adapter in this package.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}
