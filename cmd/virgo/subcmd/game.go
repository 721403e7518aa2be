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

	"github.com/openziti/virgo/kernel/engine"
	"github.com/spf13/cobra"
)

func NewGameCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Manage game instances",
	}
	cmd.AddCommand(NewGameCreateCommand(root))
	cmd.AddCommand(NewGameListCommand(root))
	cmd.AddCommand(NewGameKillCommand(root))
	cmd.AddCommand(NewGameClearCommand(root))
	return cmd
}

func NewGameCreateCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <mode>",
		Short: "Create a new game instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withManager(func(m *engine.Manager) error {
				instance, err := m.Launcher.Launch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "launched %s\n", instance.Listing())
				return err
			})
		},
	}
}

func NewGameListCommand(root *RootOptions) *cobra.Command {
	listCmd := &GameListCommand{root: root}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List game instances",
		Args:  cobra.NoArgs,
		RunE:  listCmd.list,
	}
	listCmd.Output.addFlags(cmd)

	return cmd
}

type GameListCommand struct {
	root   *RootOptions
	Output OutputOptions
}

func (c *GameListCommand) list(cmd *cobra.Command, args []string) error {
	if err := c.Output.validate(); err != nil {
		return err
	}
	return c.root.withManager(func(m *engine.Manager) error {
		instances, err := m.Reconciler.Reconcile(cmd.Context())
		if err != nil {
			return err
		}
		return c.Output.renderInstances(cmd.OutOrStdout(), instances)
	})
}

func NewGameKillCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "kill [id...]",
		Short:       "Kill game instances",
		Annotations: map[string]string{AdminAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return nil
			}
			return root.withManager(func(m *engine.Manager) error {
				if err := m.Terminator.TerminateByIds(cmd.Context(), args); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "terminated %d instance(s)\n", len(args))
				return err
			})
		},
	}
}

func NewGameClearCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "clear",
		Short:       "Kill every pending or running game instance",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{AdminAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withManager(func(m *engine.Manager) error {
				ids, err := m.Terminator.TerminateAllManaged(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "terminated %d instance(s)\n", len(ids))
				return err
			})
		},
	}
}
