package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"serve", "reindex", "search", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootCmd_Help(t *testing.T) {
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "knowledge base")
	assert.Contains(t, buf.String(), "--config")
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"bogus"})

	err := cmd.Execute()
	assert.Error(t, err)
}

func TestSearchCmd_RejectsUnknownFormat(t *testing.T) {
	t.Setenv("DOCKB_DOCS_ROOT", t.TempDir())
	t.Setenv("DOCKB_DATA_DIR", t.TempDir())

	cmd := newSearchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"query", "--format", "xml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
