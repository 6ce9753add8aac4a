// Command blockmentor runs the Music Blocks mentor API and offers offline
// helpers for inspecting project flowcharts.
package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mitchellh/cli"
)

const version = "0.1.0"

func main() {
	os.Exit(realMain(os.Args[1:], newUI(os.Stdin, os.Stdout, os.Stderr)))
}

func realMain(args []string, ui cli.Ui) int {
	c := cli.NewCLI("blockmentor", version)
	c.Args = args
	c.Commands = commands(ui)
	c.HelpWriter = uiWriter{ui.Output}
	c.ErrorWriter = uiWriter{ui.Error}

	code, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	return code
}

func commands(ui cli.Ui) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"serve": func() (cli.Command, error) {
			return &ServeCommand{Ui: ui}, nil
		},
		"convert": func() (cli.Command, error) {
			return &ConvertCommand{Ui: ui, Stdin: os.Stdin}, nil
		},
		"blocks": func() (cli.Command, error) {
			return &BlocksCommand{Ui: ui}, nil
		},
	}
}

// newUI colours errors and warnings only when stdout is a terminal.
func newUI(in io.Reader, out, errOut *os.File) cli.Ui {
	var ui cli.Ui = &cli.BasicUi{Reader: in, Writer: out, ErrorWriter: errOut}
	if !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
		return ui
	}
	return &cli.ColoredUi{
		ErrorColor: cli.UiColorRed,
		WarnColor:  cli.UiColorYellow,
		Ui:         ui,
	}
}

// uiWriter adapts a Ui output method to io.Writer for the CLI's help text.
type uiWriter struct {
	emit func(string)
}

func (w uiWriter) Write(p []byte) (int, error) {
	s := string(p)
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	w.emit(s)
	return len(p), nil
}
