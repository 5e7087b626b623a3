package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthDependencies(t *testing.T) {
	s := &HealthService{checks: map[string]Pinger{
		"redis":   pingerFunc(func(context.Context) error { return nil }),
		"mongodb": pingerFunc(func(context.Context) error { return errors.New("no reachable servers") }),
	}}

	failed := s.Dependencies(context.Background())
	assert.Equal(t, map[string]string{"mongodb": "no reachable servers"}, failed)

	assert.False(t, s.IsReady())
	s.SetReady(true)
	assert.True(t, s.IsReady())
}
