package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	root := newRootCommand()

	names := []string{}
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "diagnose")
	assert.NotNil(t, root.Flags().Lookup("port"))
}

func TestMissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	for _, args := range [][]string{{"run"}, {"diagnose"}, {}} {
		root := newRootCommand()
		root.SetArgs(append(args, "--env-file", ""))

		err := root.Execute()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing TELEGRAM_BOT_TOKEN")
	}
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "1234567890", prefix("1234567890:secret", 10))
	assert.Equal(t, "short", prefix("short", 10))
}
