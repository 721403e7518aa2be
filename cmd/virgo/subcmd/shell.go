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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	DefaultPrefix = "v!"
	ShellPrompt   = "virgo> "

	okMark   = "✅"
	failMark = "❌"
)

func NewShellCommand(root *RootOptions) *cobra.Command {
	shellCmd := &ShellCommand{root: root}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Read prefixed commands (e.g. 'v!game list') interactively",
		Long: `Start an interactive shell that accepts the same commands as the CLI, written with
a command prefix, for example:

  v!mode list
  v!game create deathmatch
  v!game kill i-0123456789abcdef0

Lines without the prefix are ignored. 'v!exit' ends the session. Every line shares one
provider connection.`,
		Args: cobra.NoArgs,
		RunE: shellCmd.run,
	}

	cmd.Flags().StringVar(&shellCmd.Prefix, "prefix", DefaultPrefix, "command prefix")

	return cmd
}

type ShellCommand struct {
	root   *RootOptions
	Prefix string
}

func (s *ShellCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := s.root.LoadConfig()
	if err != nil {
		return err
	}
	session, err := OpenSession(cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	if stdin, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(stdin.Fd())) {
		fd := int(stdin.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("unable to put terminal in raw mode: %w", err)
		}
		defer func() { _ = term.Restore(fd, state) }()

		screen := struct {
			io.Reader
			io.Writer
		}{stdin, cmd.OutOrStdout()}
		terminal := term.NewTerminal(screen, ShellPrompt)
		return s.loop(cmd.Context(), session, terminal.ReadLine, terminal)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	readLine := func() (string, error) {
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.loop(cmd.Context(), session, readLine, cmd.OutOrStdout())
}

func (s *ShellCommand) loop(ctx context.Context, session *Session, readLine func() (string, error), out io.Writer) error {
	for {
		line, err := readLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if s.dispatch(ctx, session, line, out) {
			return nil
		}
	}
}

// dispatch runs one line and reports whether the session should end.
func (s *ShellCommand) dispatch(ctx context.Context, session *Session, line string, out io.Writer) bool {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, s.Prefix) {
		return false
	}
	args := strings.Fields(strings.TrimPrefix(line, s.Prefix))
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "exit":
		return true
	case "shell", "serve":
		_, _ = fmt.Fprintln(out, failMark)
		PrintError(out, fmt.Errorf("'%s' is not available from the shell", args[0]))
		return false
	}

	root := newRootCommand(&RootOptions{session: session})
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(out, failMark)
		PrintError(out, err)
		return false
	}
	_, _ = fmt.Fprintln(out, okMark)
	return false
}
