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
	"errors"
	"net/http"

	"github.com/openziti/virgo/kernel/mcp"
	"github.com/openziti/virgo/kernel/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewServeCommand(root *RootOptions) *cobra.Command {
	serveCmd := &ServeCommand{root: root}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start an MCP server exposing game management over stdio",
		Long: `Start an MCP (Model Context Protocol) server over stdio.

The server provides tools for:
  - list_modes: List the game modes that can be launched
  - create_game: Launch a game instance for a mode
  - list_games: List running game instances
  - kill_games: Terminate game instances by id
  - clear_games: Terminate every managed game instance

And resources:
  - virgo://games: Running game instances as JSON`,
		Args: cobra.NoArgs,
		RunE: serveCmd.run,
	}

	cmd.Flags().StringVar(&serveCmd.MetricsListen, "metrics-listen", "", "address to serve Prometheus metrics on (overrides metrics.listen)")

	return cmd
}

type ServeCommand struct {
	root          *RootOptions
	MetricsListen string
}

func (s *ServeCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := s.root.LoadConfig()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	session, err := OpenSession(cfg, metrics.NewPrometheusObserver(registry))
	if err != nil {
		return err
	}
	defer session.Close()

	listen := cfg.Metrics.Listen
	if s.MetricsListen != "" {
		listen = s.MetricsListen
	}
	if listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: listen, Handler: mux}
		go func() {
			logrus.Infof("serving metrics on [%s]", listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.WithError(err).Error("metrics listener failed")
			}
		}()
		defer srv.Close()
	}

	logrus.Infof("starting MCP server on stdio (provider [%s], region [%s])...", cfg.Provider, cfg.Region)
	return mcp.NewVirgoMCPServer(session.Manager, Version).ServeStdio()
}
