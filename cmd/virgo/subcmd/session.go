/*
	(c) Copyright NetFoundry Inc. Inc.

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

	https://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package subcmd

import (
	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/virgo/kernel/engine"
	"github.com/openziti/virgo/kernel/events"
	"github.com/openziti/virgo/kernel/metrics"
	"github.com/openziti/virgo/kernel/model"
	"github.com/openziti/virgo/kernel/store"
)

// openProvider is swapped out by tests that need provider state to outlive one command.
var openProvider = store.Open

// Session owns the provider handle and the observers opened for it.
type Session struct {
	Manager  *engine.Manager
	provider store.Provider
	closers  []func()
}

func OpenSession(cfg *model.VirgoConfig, extra ...engine.Observer) (*Session, error) {
	provider, err := openProvider(cfg)
	if err != nil {
		return nil, err
	}

	session := &Session{provider: provider}
	observers := append([]engine.Observer{}, extra...)

	if cfg.Metrics.Influx.Enabled() {
		influx := metrics.NewInfluxObserver(cfg.Metrics.Influx)
		observers = append(observers, influx)
		session.closers = append(session.closers, influx.Close)
	}

	if cfg.Events.Enabled() {
		nats, err := events.DialNats(cfg.Events)
		if err != nil {
			pfxlog.Logger().WithError(err).Warn("lifecycle events disabled")
		} else {
			observers = append(observers, nats)
			session.closers = append(session.closers, func() {
				if err := nats.Close(); err != nil {
					pfxlog.Logger().WithError(err).Warn("error draining nats connection")
				}
			})
		}
	}

	session.Manager = engine.NewManager(provider, observers...)
	return session, nil
}

func (s *Session) Close() {
	for _, closer := range s.closers {
		closer()
	}
	if err := s.provider.Close(); err != nil {
		pfxlog.Logger().WithError(err).Warn("error closing provider")
	}
}
