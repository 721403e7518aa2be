package metrics

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/virgo/kernel/engine"
	"github.com/openziti/virgo/kernel/model"
)

const DefaultWriteTimeout = 5 * time.Second

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxObserver writes one point per lifecycle event. Write failures are logged and dropped.
type InfluxObserver struct {
	client  influxdb2.Client
	writer  pointWriter
	timeout time.Duration
}

func NewInfluxObserver(cfg model.InfluxConfig) *InfluxObserver {
	client := influxdb2.NewClient(cfg.Url, cfg.Token)
	return &InfluxObserver{
		client:  client,
		writer:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout: DefaultWriteTimeout,
	}
}

func (o *InfluxObserver) Launched(instance model.ManagedInstance) {
	o.write("launch", map[string]string{"mode": instance.Mode}, map[string]interface{}{"instance": instance.Id, "count": 1})
}

func (o *InfluxObserver) Listed(instances []model.ManagedInstance) {
	impaired := 0
	for _, i := range instances {
		if i.Health() != model.HealthOk {
			impaired++
		}
	}
	o.write("fleet", nil, map[string]interface{}{"running": len(instances), "impaired": impaired})
}

func (o *InfluxObserver) Terminated(ids []string) {
	o.write("terminate", nil, map[string]interface{}{"count": len(ids)})
}

func (o *InfluxObserver) Failed(op engine.Op, err error) {
	o.write("failure",
		map[string]string{"op": string(op), "kind": engine.KindOf(err).String()},
		map[string]interface{}{"message": err.Error()})
}

func (o *InfluxObserver) Close() {
	if o.client != nil {
		o.client.Close()
	}
}

func (o *InfluxObserver) write(measurement string, tags map[string]string, fields map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	point := influxdb2.NewPoint(measurement, tags, fields, time.Now())
	if err := o.writer.WritePoint(ctx, point); err != nil {
		pfxlog.Logger().WithError(err).Warnf("unable to write [%s] point to influx", measurement)
	}
}
