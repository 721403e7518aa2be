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
	"fmt"
	"io"

	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/virgo/kernel/engine"
	"github.com/openziti/virgo/kernel/loader"
	"github.com/openziti/virgo/kernel/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// AdminAnnotation marks commands that tear down instances. The front end in front of virgo is
// expected to check it before dispatching.
const AdminAnnotation = "virgo/admin"

var Version = "dev"

var RootCmd = NewRootCommand()

func init() {
	pfxlog.GlobalInit(logrus.InfoLevel, pfxlog.DefaultOptions().SetTrimPrefix("github.com/openziti/"))
}

type RootOptions struct {
	ConfigPath   string
	Provider     string
	SandboxModes []string
	Verbose      bool

	// set by the shell so every line shares one provider handle
	session *Session
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "virgo",
		Short:         "Provision, list and tear down short-lived game instances",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.Verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to configuration file (default ~/.virgo/config.yml)")
	cmd.PersistentFlags().StringVar(&opts.Provider, "provider", "", "override the configured provider (ec2, memory)")
	cmd.PersistentFlags().StringSliceVar(&opts.SandboxModes, "sandbox-mode", nil, "mode to seed into the memory provider")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose logging")

	cmd.AddCommand(NewModeCommand(opts))
	cmd.AddCommand(NewGameCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func (o *RootOptions) LoadConfig() (*model.VirgoConfig, error) {
	var cfg *model.VirgoConfig
	var err error
	if o.ConfigPath != "" {
		cfg, err = loader.LoadConfig(o.ConfigPath)
	} else {
		var path string
		if path, err = model.ConfigPath(); err != nil {
			return nil, err
		}
		cfg, err = loader.LoadConfigOrDefault(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if o.Provider != "" {
		cfg.Provider = o.Provider
	}
	if len(o.SandboxModes) > 0 {
		cfg.SandboxModes = o.SandboxModes
	}
	return cfg, nil
}

// withManager runs fn against the shell's shared session, or against a session opened for
// this command alone.
func (o *RootOptions) withManager(fn func(m *engine.Manager) error) error {
	if o.session != nil {
		return fn(o.session.Manager)
	}

	cfg, err := o.LoadConfig()
	if err != nil {
		return err
	}
	session, err := OpenSession(cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	return fn(session.Manager)
}

// PrintError renders err for users, naming the domain error kind where there is one.
func PrintError(w io.Writer, err error) {
	if engine.IsDomainError(err) {
		_, _ = fmt.Fprintln(w, engine.Render(err))
		return
	}
	_, _ = fmt.Fprintf(w, "virgo: %v\n", err)
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the virgo version",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "virgo %s\n", Version)
		},
	}
}
