package engine

import (
	"context"
	"sync"

	"github.com/openziti/virgo/kernel/model"
	"github.com/openziti/virgo/kernel/store"
)

// recordingProvider counts calls made against a MemoryStore and injects failures.
type recordingProvider struct {
	*store.MemoryStore

	mu             sync.Mutex
	healthCalls    [][]string
	terminateCalls [][]string
	runCalls       int

	describeModesErr error
	runErr           error
	tagErr           error
	describeErr      error
	healthErr        error
	terminateErr     error
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{MemoryStore: store.NewMemoryStore(model.NewOwnership(""))}
}

func (p *recordingProvider) DescribeModes(ctx context.Context, names []string) ([]model.Mode, error) {
	if p.describeModesErr != nil {
		return nil, p.describeModesErr
	}
	return p.MemoryStore.DescribeModes(ctx, names)
}

func (p *recordingProvider) RunInstance(ctx context.Context, mode string) ([]model.ManagedInstance, error) {
	p.mu.Lock()
	p.runCalls++
	p.mu.Unlock()
	if p.runErr != nil {
		return nil, p.runErr
	}
	return p.MemoryStore.RunInstance(ctx, mode)
}

func (p *recordingProvider) TagOwned(ctx context.Context, ids []string, mode string) error {
	if p.tagErr != nil {
		return p.tagErr
	}
	return p.MemoryStore.TagOwned(ctx, ids, mode)
}

func (p *recordingProvider) DescribeInstances(ctx context.Context, states ...string) ([]model.ManagedInstance, error) {
	if p.describeErr != nil {
		return nil, p.describeErr
	}
	return p.MemoryStore.DescribeInstances(ctx, states...)
}

func (p *recordingProvider) DescribeHealth(ctx context.Context, ids []string) (map[string]string, error) {
	p.mu.Lock()
	p.healthCalls = append(p.healthCalls, append([]string(nil), ids...))
	p.mu.Unlock()
	if p.healthErr != nil {
		return nil, p.healthErr
	}
	return p.MemoryStore.DescribeHealth(ctx, ids)
}

func (p *recordingProvider) TerminateInstances(ctx context.Context, ids []string) error {
	p.mu.Lock()
	p.terminateCalls = append(p.terminateCalls, ids)
	p.mu.Unlock()
	if p.terminateErr != nil {
		return p.terminateErr
	}
	return p.MemoryStore.TerminateInstances(ctx, ids)
}

type recordingObserver struct {
	launched   []model.ManagedInstance
	listed     int
	terminated [][]string
	failed     []Op
}

func (o *recordingObserver) Launched(instance model.ManagedInstance) {
	o.launched = append(o.launched, instance)
}

func (o *recordingObserver) Listed([]model.ManagedInstance) {
	o.listed++
}

func (o *recordingObserver) Terminated(ids []string) {
	o.terminated = append(o.terminated, ids)
}

func (o *recordingObserver) Failed(op Op, _ error) {
	o.failed = append(o.failed, op)
}

func tagged(mode string) map[string]string {
	return model.NewOwnership("").Tag(mode)
}
