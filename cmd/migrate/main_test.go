package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"up", "down", "status", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestSubcommandsRejectArguments(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"up", "extra"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
