package engine

import "github.com/openziti/virgo/kernel/store"

// Manager wires the lifecycle components to one provider handle. It holds no state of its own;
// the handle's lifecycle stays with the caller.
type Manager struct {
	Catalog    *Catalog
	Launcher   *Launcher
	Reconciler *Reconciler
	Terminator *Terminator
}

func NewManager(p store.Provider, observers ...Observer) *Manager {
	observer := Observers(observers)
	catalog := NewCatalog(p, observer)
	return &Manager{
		Catalog:    catalog,
		Launcher:   NewLauncher(catalog, p, observer),
		Reconciler: NewReconciler(p, observer),
		Terminator: NewTerminator(p, observer),
	}
}
