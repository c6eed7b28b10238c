package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
}

func (c stubChecker) Name() string                  { return c.name }
func (c stubChecker) Check(_ context.Context) error { return c.err }

func TestReadyAllHealthy(t *testing.T) {
	svc := NewService(stubChecker{name: "postgres"}, stubChecker{name: "redis"})
	require.NoError(t, svc.Ready(context.Background()))
}

func TestReadyNoCheckers(t *testing.T) {
	require.NoError(t, NewService().Ready(context.Background()))
}

func TestReadyNamesFailingDependency(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewService(stubChecker{name: "postgres"}, stubChecker{name: "redis", err: cause})

	err := svc.Ready(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "redis")
}
