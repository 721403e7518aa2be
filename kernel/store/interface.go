package store

import (
	"context"

	"github.com/openziti/virgo/kernel/model"
)

// Provider is the wire boundary to the compute provider, which is the only system of record.
// Every describe call is scoped to resources carrying the provider's ownership tag.
type Provider interface {
	// DescribeModes returns owned launch templates. An empty names slice returns all of them.
	DescribeModes(ctx context.Context, names []string) ([]model.Mode, error)
	RunInstance(ctx context.Context, mode string) ([]model.ManagedInstance, error)
	// TagOwned stamps the ownership tag onto ids, recording mode as its value.
	TagOwned(ctx context.Context, ids []string, mode string) error
	DescribeInstances(ctx context.Context, states ...string) ([]model.ManagedInstance, error)
	// DescribeHealth returns instance id -> health status for the ids the provider has a record for.
	DescribeHealth(ctx context.Context, ids []string) (map[string]string, error)
	// TerminateInstances treats an empty id list as a no-op.
	TerminateInstances(ctx context.Context, ids []string) error
	Close() error
}

// ErrClosed is returned by providers used after Close.
var ErrClosed = errClosed{}

type errClosed struct{}

func (errClosed) Error() string {
	return "provider connection is closed"
}
