package engine

import (
	"context"

	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/virgo/kernel/model"
	"github.com/openziti/virgo/kernel/store"
)

// Catalog resolves mode names against the owned launch templates.
type Catalog struct {
	Provider store.Provider
	Observer Observer
}

func NewCatalog(p store.Provider, observer Observer) *Catalog {
	return &Catalog{Provider: p, Observer: orNop(observer)}
}

func (c *Catalog) Resolve(ctx context.Context, name string) (model.Mode, error) {
	modes, err := c.Provider.DescribeModes(ctx, []string{name})
	if err != nil {
		err = Translate(OpDescribeModes, err, name)
		c.Observer.Failed(OpDescribeModes, err)
		return model.Mode{}, err
	}
	if len(modes) == 0 {
		err = &ModeNotFoundError{Mode: name}
		c.Observer.Failed(OpDescribeModes, err)
		return model.Mode{}, err
	}
	pfxlog.Logger().Debugf("resolved mode [%s]", name)
	return modes[0], nil
}

// List returns every owned mode in provider order.
func (c *Catalog) List(ctx context.Context) ([]model.Mode, error) {
	modes, err := c.Provider.DescribeModes(ctx, nil)
	if err != nil {
		err = &ProviderError{Op: OpDescribeModes, Cause: err}
		c.Observer.Failed(OpDescribeModes, err)
		return nil, err
	}
	return modes, nil
}
