package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor/observability"
)

const project = `[
  ["s", ["start", {"id": 0, "xcor": 0, "ycor": 0, "heading": 0, "color": 0, "shade": 50, "pensize": 5, "grey": 100}], 0, 0, [null, "f"]],
  ["f", "forward", 0, 0, [null, "n", null]],
  ["n", ["number", {"value": 10}], 0, 0, ["f"]],
  "not a block"
]`

func writeProject(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, os.WriteFile(path, []byte(project), 0o600))
	return path
}

func TestConvertCommand(t *testing.T) {
	path := writeProject(t)

	tests := []struct {
		name     string
		args     []string
		stdin    string
		wantCode int
		wantOut  []string
		wantErr  string
	}{
		{
			name:    "file",
			args:    []string{path},
			wantOut: []string{"Start of Project\n├── Start Block", "├── Move Forward → 10 Steps"},
			wantErr: "Skipped 1 malformed",
		},
		{
			name:    "with block info",
			args:    []string{"-info", path},
			wantOut: []string{"Move Forward : The Forward block", "Start Block : Each Start block"},
		},
		{
			name:    "stdin",
			args:    []string{"-"},
			stdin:   project,
			wantOut: []string{"├── Move Forward → 10 Steps"},
		},
		{
			name:     "no file",
			args:     nil,
			wantCode: 1,
			wantErr:  "Exactly one project file",
		},
		{
			name:     "missing file",
			args:     []string{filepath.Join(t.TempDir(), "nope.json")},
			wantCode: 1,
			wantErr:  "read project",
		},
		{
			name:     "invalid json",
			args:     []string{"-"},
			stdin:    `[["s", "start"`,
			wantCode: 1,
			wantErr:  "Error reading project",
		},
		{
			name:    "not a list",
			args:    []string{"-"},
			stdin:   `{"blocks": []}`,
			wantOut: []string{"Invalid JSON format"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui := cli.NewMockUi()
			cmd := &ConvertCommand{Ui: ui, Stdin: strings.NewReader(tt.stdin)}

			code := cmd.Run(tt.args)
			assert.Equal(t, tt.wantCode, code, ui.ErrorWriter.String())
			for _, want := range tt.wantOut {
				assert.Contains(t, ui.OutputWriter.String(), want)
			}
			if tt.wantErr != "" {
				assert.Contains(t, ui.ErrorWriter.String(), tt.wantErr)
			}
		})
	}
}

func TestBlocksCommand(t *testing.T) {
	ui := cli.NewMockUi()
	cmd := &BlocksCommand{Ui: ui}

	require.Equal(t, 0, cmd.Run(nil))
	out := ui.OutputWriter.String()
	assert.True(t, strings.HasPrefix(out, "Start Block: Each Start block"))
	assert.Contains(t, out, "Setxy: The Set XY block")

	assert.Equal(t, 1, (&BlocksCommand{Ui: cli.NewMockUi()}).Run([]string{"extra"}))
}

func TestRealMain(t *testing.T) {
	ui := cli.NewMockUi()
	assert.Equal(t, 0, realMain([]string{"blocks"}, ui))
	assert.Contains(t, ui.OutputWriter.String(), "Move Backward")

	ui = cli.NewMockUi()
	assert.Equal(t, 0, realMain([]string{"convert", writeProject(t)}, ui))
	assert.Contains(t, ui.OutputWriter.String(), "Start of Project")
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("server:\n  addr: \":9100\"\nlog:\n  level: debug\n"), 0o600))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log:\n  level: chatty\n"), 0o600))

	s, err := loadSettings(good, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":9100", s.Addr)
	assert.Equal(t, "debug", s.LogLevel)

	_, err = loadSettings(bad, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")

	_, err = loadSettings(filepath.Join(dir, "absent.yaml"), "")
	assert.ErrorContains(t, err, "load settings")
}

func TestBuildService(t *testing.T) {
	s, err := loadSettings("", "")
	require.NoError(t, err)
	s.CachePath = ":memory:"
	s.QdrantURL = "http://127.0.0.1:1"

	svc, err := buildService(s, observability.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	res, err := svc.Flowchart(context.Background(), project)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
}

func TestSetupTelemetry(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		t.Setenv("OTEL_TRACES_EXPORTER", "")
		t.Setenv("OTEL_METRICS_EXPORTER", "")
		shutdown, err := setupTelemetry(context.Background())
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("none exporters", func(t *testing.T) {
		t.Setenv("OTEL_TRACES_EXPORTER", "none")
		t.Setenv("OTEL_METRICS_EXPORTER", "none")
		shutdown, err := setupTelemetry(context.Background())
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	})
}
