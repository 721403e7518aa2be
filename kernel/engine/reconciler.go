package engine

import (
	"context"

	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/virgo/kernel/model"
	"github.com/openziti/virgo/kernel/store"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/sync/errgroup"
)

// HealthBatchSize is the most instance ids EC2 accepts in one status request.
const HealthBatchSize = 100

// Reconciler merges the running managed instances with their health records.
type Reconciler struct {
	Provider  store.Provider
	Observer  Observer
	BatchSize int
}

func NewReconciler(p store.Provider, observer Observer) *Reconciler {
	return &Reconciler{Provider: p, Observer: orNop(observer), BatchSize: HealthBatchSize}
}

// Reconcile returns every running managed instance exactly once, in provider order. Instances
// without a health record yet are reported as ok. Every failure is a ProviderError; not-found
// codes from the provider describe its own view and never name anything the caller asked for.
func (r *Reconciler) Reconcile(ctx context.Context) ([]model.ManagedInstance, error) {
	instances, err := r.Provider.DescribeInstances(ctx, model.StateRunning)
	if err != nil {
		return nil, r.fail(OpDescribeInstances, &ProviderError{Op: OpDescribeInstances, Cause: err})
	}

	health, err := r.health(ctx, instanceIds(instances))
	if err != nil {
		return nil, r.fail(OpDescribeHealth, &ProviderError{Op: OpDescribeHealth, Cause: err})
	}

	result := make([]model.ManagedInstance, 0, len(instances))
	for _, i := range instances {
		i.HealthStatus = model.HealthOk
		if status, found := health.Get(i.Id); found {
			i.HealthStatus = status
		}
		result = append(result, i)
	}
	pfxlog.Logger().Debugf("reconciled %d running instance(s), %d with health records", len(result), health.Count())
	r.Observer.Listed(result)
	return result, nil
}

// Listing renders Reconcile as one line per instance.
func (r *Reconciler) Listing(ctx context.Context) ([]string, error) {
	instances, err := r.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	return model.Listings(instances), nil
}

func (r *Reconciler) health(ctx context.Context, ids []string) (cmap.ConcurrentMap[string, string], error) {
	health := cmap.New[string]()
	size := r.BatchSize
	if size <= 0 {
		size = HealthBatchSize
	}

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(ids); start += size {
		batch := ids[start:min(start+size, len(ids))]
		g.Go(func() error {
			statuses, err := r.Provider.DescribeHealth(gctx, batch)
			if err != nil {
				return err
			}
			health.MSet(statuses)
			return nil
		})
	}
	return health, g.Wait()
}

func (r *Reconciler) fail(op Op, err error) error {
	r.Observer.Failed(op, err)
	return err
}
