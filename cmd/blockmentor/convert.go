package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor/blockinfo"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/config"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/flowchart"
)

// ConvertCommand prints the flowchart of a project file.
type ConvertCommand struct {
	Ui    cli.Ui
	Stdin io.Reader
}

func (c *ConvertCommand) Help() string {
	return strings.TrimSpace(`
Usage: blockmentor convert [options] FILE

  Converts a Music Blocks project file to the flowchart the mentors see.
  Use "-" as FILE to read the project from standard input.

Options:

  -info        Also print the descriptions of the blocks used.
  -raw         Keep lines that the noise filter would drop.
`)
}

func (c *ConvertCommand) Synopsis() string {
	return "Print the flowchart of a project file"
}

func (c *ConvertCommand) Run(args []string) int {
	var info, raw bool
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.Usage = func() { c.Ui.Error(c.Help()) }
	fs.BoolVar(&info, "info", false, "print block descriptions")
	fs.BoolVar(&raw, "raw", false, "disable the noise filter")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		c.Ui.Error("Exactly one project file is required.\n\n" + c.Help())
		return 1
	}

	data, err := c.read(fs.Arg(0))
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	var opts []flowchart.Option
	if !raw {
		opts = append(opts, flowchart.WithNoiseLines(config.DefaultNoiseLines...))
	}
	decoded, err := flowchart.Decode(data)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error reading project: %s", err))
		return 1
	}
	res := flowchart.New(opts...).Run(decoded)

	c.Ui.Output(flowchart.Text(res.Lines))
	if res.Skipped > 0 {
		c.Ui.Warn(fmt.Sprintf("Skipped %d malformed block entries.", res.Skipped))
	}
	if info {
		if desc := blockinfo.Lookup(res.Lines); desc != "" {
			c.Ui.Output("")
			c.Ui.Output(strings.TrimSuffix(desc, "\n"))
		}
	}
	return 0
}

func (c *ConvertCommand) read(name string) ([]byte, error) {
	if name == "-" {
		in := c.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	return data, nil
}

// BlocksCommand lists the block catalogue.
type BlocksCommand struct {
	Ui cli.Ui
}

func (c *BlocksCommand) Help() string {
	return strings.TrimSpace(`
Usage: blockmentor blocks

  Lists the block descriptions that are added to prompts whenever a
  flowchart mentions the block.
`)
}

func (c *BlocksCommand) Synopsis() string {
	return "List the block descriptions given to the mentors"
}

func (c *BlocksCommand) Run(args []string) int {
	if len(args) > 0 {
		c.Ui.Error(c.Help())
		return 1
	}
	for _, e := range blockinfo.Default().Entries() {
		c.Ui.Output(fmt.Sprintf("%s: %s", e.Label, e.Description))
	}
	return 0
}
