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
	"github.com/openziti/virgo/kernel/engine"
	"github.com/spf13/cobra"
)

func NewModeCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Manage game modes",
	}
	cmd.AddCommand(NewModeListCommand(root))
	return cmd
}

func NewModeListCommand(root *RootOptions) *cobra.Command {
	listCmd := &ModeListCommand{root: root}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List game modes",
		Args:  cobra.NoArgs,
		RunE:  listCmd.list,
	}
	listCmd.Output.addFlags(cmd)

	return cmd
}

type ModeListCommand struct {
	root   *RootOptions
	Output OutputOptions
}

func (c *ModeListCommand) list(cmd *cobra.Command, args []string) error {
	if err := c.Output.validate(); err != nil {
		return err
	}
	return c.root.withManager(func(m *engine.Manager) error {
		modes, err := m.Catalog.List(cmd.Context())
		if err != nil {
			return err
		}
		return c.Output.renderModes(cmd.OutOrStdout(), modes)
	})
}
