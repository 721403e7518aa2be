package engine

import (
	"context"

	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/virgo/kernel/model"
	"github.com/openziti/virgo/kernel/store"
)

type Terminator struct {
	Provider store.Provider
	Observer Observer
}

func NewTerminator(p store.Provider, observer Observer) *Terminator {
	return &Terminator{Provider: p, Observer: orNop(observer)}
}

// TerminateByIds destroys exactly the given instances in one provider call. An empty id list
// returns immediately.
func (t *Terminator) TerminateByIds(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := t.Provider.TerminateInstances(ctx, ids); err != nil {
		err = Translate(OpTerminate, err, ids...)
		t.Observer.Failed(OpTerminate, err)
		return err
	}
	pfxlog.Logger().WithField("instances", ids).Info("terminated instances")
	t.Observer.Terminated(ids)
	return nil
}

// TerminateAllManaged destroys every managed instance that is pending or running and returns
// their ids. The termination call is issued even when nothing matched; providers treat an
// empty id list as a no-op.
func (t *Terminator) TerminateAllManaged(ctx context.Context) ([]string, error) {
	instances, err := t.Provider.DescribeInstances(ctx, model.StatePending, model.StateRunning)
	if err != nil {
		err = &ProviderError{Op: OpDescribeInstances, Cause: err}
		t.Observer.Failed(OpDescribeInstances, err)
		return nil, err
	}

	ids := instanceIds(instances)
	if err := t.Provider.TerminateInstances(ctx, ids); err != nil {
		// ids came from the provider itself, so any failure here is a provider failure
		err = &ProviderError{Op: OpTerminate, Cause: err}
		t.Observer.Failed(OpTerminate, err)
		return nil, err
	}
	pfxlog.Logger().WithField("instances", ids).Infof("cleared %d managed instance(s)", len(ids))
	t.Observer.Terminated(ids)
	return ids, nil
}
