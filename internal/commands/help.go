package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcli/internal/app"
	"taskcli/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskcli help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, HelpText)
	return exitcode.Success
}

// HelpText is printed by help and by the shell's help builtin.
const HelpText = `Usage:
  taskcli                                            Show the dashboard
  taskcli dashboard [common flags]
  taskcli login [common flags] [--password <password>] <username>
  taskcli logout [common flags]
  taskcli register [common flags] --password <p> --confirm <p> <username>
  taskcli whoami [common flags]
  taskcli status [common flags]
  taskcli validate [common flags]
  taskcli tasks [common flags] [--done|--open] [--category <id>]
  taskcli show [common flags] <task-id>
  taskcli add [common flags] --category <id> [--description <text>] <title...>
  taskcli edit [common flags] <task-id> [--title <t>] [--description <d>]
               [--category <id>] [--completed=<bool>]
  taskcli done [common flags] <task-id>
  taskcli undone [common flags] <task-id>
  taskcli rm [common flags] <task-id>
  taskcli categories [common flags]
  taskcli addcat [common flags] <name...>
  taskcli editcat [common flags] <category-id> <name...>
  taskcli rmcat [common flags] <category-id>
  taskcli shell [common flags]                       Interactive session
  taskcli help
  taskcli version

Common flags:
  --config <dir>    Override config directory
  --quiet           Suppress informational output
  --debug           Print debug logs to stderr
  --output <fmt>    Listing format: text, json or yaml
`
