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
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/oliveagle/jsonpath"
	"github.com/openziti/virgo/kernel/model"
	"github.com/spf13/cobra"
)

const (
	OutputText  = "text"
	OutputTable = "table"
	OutputJson  = "json"
)

type OutputOptions struct {
	Format string
	Query  string
}

func (o *OutputOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Format, "output", "o", OutputText, "output format (text, table, json)")
	cmd.Flags().StringVar(&o.Query, "query", "", "JSONPath expression applied to json output, e.g. '$[*].id'")
}

func (o *OutputOptions) validate() error {
	switch o.Format {
	case OutputText, OutputTable, OutputJson:
	default:
		return fmt.Errorf("unknown output format '%s'", o.Format)
	}
	if o.Query != "" && o.Format != OutputJson {
		return fmt.Errorf("--query requires --output json")
	}
	return nil
}

func (o *OutputOptions) renderInstances(w io.Writer, instances []model.ManagedInstance) error {
	switch o.Format {
	case OutputTable:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Name", "Id", "Mode", "Address", "Health"})
		for _, i := range instances {
			t.AppendRow(table.Row{i.Name(), i.Id, i.Mode, i.Address(), i.Health()})
		}
		t.Render()
		return nil
	case OutputJson:
		if instances == nil {
			instances = []model.ManagedInstance{}
		}
		return o.renderJson(w, instances)
	default:
		return renderLines(w, model.Listings(instances))
	}
}

func (o *OutputOptions) renderModes(w io.Writer, modes []model.Mode) error {
	switch o.Format {
	case OutputTable:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Mode"})
		for _, m := range modes {
			t.AppendRow(table.Row{m.Name})
		}
		t.Render()
		return nil
	case OutputJson:
		if modes == nil {
			modes = []model.Mode{}
		}
		return o.renderJson(w, modes)
	default:
		return renderLines(w, model.ModeNames(modes))
	}
}

func (o *OutputOptions) renderJson(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if o.Query != "" {
		var doc interface{}
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		selected, err := jsonpath.JsonPathLookup(doc, o.Query)
		if err != nil {
			return fmt.Errorf("invalid query '%s': %w", o.Query, err)
		}
		if data, err = json.Marshal(selected); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// renderLines prints nothing at all for an empty listing.
func renderLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
