package engine

import (
	"context"

	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/virgo/kernel/model"
	"github.com/openziti/virgo/kernel/store"
	"github.com/pkg/errors"
)

// Launcher creates one instance from a mode and stamps it with the ownership tag.
//
// Creation and tagging are two provider calls. If tagging fails the instance keeps running
// untagged, outside every managed view, and has to be cleaned up by an operator.
type Launcher struct {
	Catalog  *Catalog
	Provider store.Provider
	Observer Observer
}

func NewLauncher(catalog *Catalog, p store.Provider, observer Observer) *Launcher {
	return &Launcher{Catalog: catalog, Provider: p, Observer: orNop(observer)}
}

func (l *Launcher) Launch(ctx context.Context, modeName string) (model.ManagedInstance, error) {
	mode, err := l.Catalog.Resolve(ctx, modeName)
	if err != nil {
		return model.ManagedInstance{}, err
	}

	instances, err := l.Provider.RunInstance(ctx, mode.Name)
	if err != nil {
		return model.ManagedInstance{}, l.fail(OpRunInstances, Translate(OpRunInstances, err, mode.Name))
	}
	if len(instances) == 0 {
		return model.ManagedInstance{}, l.fail(OpRunInstances, &ProviderError{
			Op:    OpRunInstances,
			Cause: errors.Errorf("no instance returned for mode [%s]", mode.Name),
		})
	}

	ids := instanceIds(instances)
	if err := l.Provider.TagOwned(ctx, ids, mode.Name); err != nil {
		pfxlog.Logger().WithField("instances", ids).
			Warnf("instance(s) launched for mode [%s] could not be tagged and are orphaned: %v", mode.Name, err)
		return model.ManagedInstance{}, l.fail(OpTagInstances, &ProviderError{
			Op:    OpTagInstances,
			Cause: errors.Wrapf(err, "instance(s) %v launched but left untagged", ids),
		})
	}

	instance := instances[0]
	instance.Mode = mode.Name
	instance.HealthStatus = model.HealthOk
	pfxlog.Logger().WithField("mode", mode.Name).Infof("launched instance [%s]", instance.Id)
	l.Observer.Launched(instance)
	return instance, nil
}

func (l *Launcher) fail(op Op, err error) error {
	l.Observer.Failed(op, err)
	return err
}

func instanceIds(instances []model.ManagedInstance) []string {
	ids := make([]string, 0, len(instances))
	for _, i := range instances {
		ids = append(ids, i.Id)
	}
	return ids
}
