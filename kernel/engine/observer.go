package engine

import "github.com/openziti/virgo/kernel/model"

// Observer is notified after lifecycle operations complete. Implementations must not block
// for long and never influence the outcome of the operation.
type Observer interface {
	Launched(instance model.ManagedInstance)
	Listed(instances []model.ManagedInstance)
	Terminated(ids []string)
	Failed(op Op, err error)
}

// Observers fans notifications out to every member.
type Observers []Observer

func (o Observers) Launched(instance model.ManagedInstance) {
	for _, observer := range o {
		observer.Launched(instance)
	}
}

func (o Observers) Listed(instances []model.ManagedInstance) {
	for _, observer := range o {
		observer.Listed(instances)
	}
}

func (o Observers) Terminated(ids []string) {
	for _, observer := range o {
		observer.Terminated(ids)
	}
}

func (o Observers) Failed(op Op, err error) {
	for _, observer := range o {
		observer.Failed(op, err)
	}
}

func orNop(observer Observer) Observer {
	if observer == nil {
		return Observers(nil)
	}
	return observer
}
