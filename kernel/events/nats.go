package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/michaelquigley/pfxlog"
	"github.com/nats-io/nats.go"
	"github.com/openziti/virgo/kernel/engine"
	"github.com/openziti/virgo/kernel/model"
	"github.com/pkg/errors"
)

const (
	TypeLaunched   = "launched"
	TypeTerminated = "terminated"
	TypeFailed     = "failed"
)

// Event is published to <subject>.<type> for every state-changing operation.
type Event struct {
	Id       string                 `json:"id"`
	Type     string                 `json:"type"`
	Time     time.Time              `json:"time"`
	Instance *model.ManagedInstance `json:"instance,omitempty"`
	Ids      []string               `json:"ids,omitempty"`
	Op       string                 `json:"op,omitempty"`
	Kind     string                 `json:"kind,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

type publisher interface {
	Publish(subject string, data []byte) error
}

type NatsObserver struct {
	conn    publisher
	nc      *nats.Conn
	subject string
}

func DialNats(cfg model.EventsConfig) (*NatsObserver, error) {
	nc, err := nats.Connect(cfg.NatsUrl, nats.Name("virgo"))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to connect to nats at [%s]", cfg.NatsUrl)
	}
	return &NatsObserver{conn: nc, nc: nc, subject: cfg.Subject}, nil
}

func (o *NatsObserver) Launched(instance model.ManagedInstance) {
	o.publish(Event{Type: TypeLaunched, Instance: &instance})
}

// Listed publishes nothing; listings do not change state.
func (o *NatsObserver) Listed([]model.ManagedInstance) {}

func (o *NatsObserver) Terminated(ids []string) {
	if len(ids) == 0 {
		return
	}
	o.publish(Event{Type: TypeTerminated, Ids: ids})
}

func (o *NatsObserver) Failed(op engine.Op, err error) {
	o.publish(Event{Type: TypeFailed, Op: string(op), Kind: engine.KindOf(err).String(), Message: err.Error()})
}

func (o *NatsObserver) Close() error {
	if o.nc == nil {
		return nil
	}
	return o.nc.Drain()
}

func (o *NatsObserver) publish(event Event) {
	event.Id = uuid.NewString()
	event.Time = time.Now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		pfxlog.Logger().WithError(err).Errorf("unable to marshal [%s] event", event.Type)
		return
	}
	subject := o.subject + "." + event.Type
	if err := o.conn.Publish(subject, data); err != nil {
		pfxlog.Logger().WithError(err).Warnf("unable to publish event to [%s]", subject)
	}
}
