// Package kv defines the key-value storage boundary shared by every domain component.
//
// Implementations offer single-key operations and set membership only. There are no multi-key
// transactions and no compare-and-set.
package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = errors.New("kv: key not found")
	// ErrUnavailable means the store could not be reached or refused the call.
	ErrUnavailable = errors.New("kv: store unavailable")
	// ErrTimeout means the call did not complete within its deadline.
	ErrTimeout = errors.New("kv: store timeout")
	// ErrMalformed means a stored value could not be decoded or failed schema validation.
	ErrMalformed = errors.New("kv: malformed value")
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	AddToSet(ctx context.Context, setKey string, members ...string) error
	SetMembers(ctx context.Context, setKey string) ([]string, error)
	RemoveFromSet(ctx context.Context, setKey string, members ...string) error
}

// IsInfrastructure reports whether err means the store could not answer,
// as opposed to a definite answer such as ErrNotFound.
func IsInfrastructure(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}
