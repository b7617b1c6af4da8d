package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravitrone/balance-console/internal/config"
)

func TestLoginCmdRejectsEmptyToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd := LoginCmd()
	cmd.SetArgs([]string{})
	cmd.SetIn(strings.NewReader("\n\n"))
	cmd.SetOut(&strings.Builder{})
	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "admin token is required")
}

func TestConfigCmdUnknownSubcommandDeterministicError(t *testing.T) {
	cmd := ConfigCmd()
	cmd.SetArgs([]string{"nope"})
	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestKeysCmdHelpWorks(t *testing.T) {
	cmd := KeysCmd()
	cmd.SetArgs([]string{"--help"})
	cmd.SetOut(&strings.Builder{})
	err := cmd.Execute()
	assert.NoError(t, err)
}

func TestKeysCmdNotLoggedInErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvToken, "")

	cmd := KeysCmd()
	cmd.SetArgs([]string{"list"})
	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestKeysCmdRejectsNonCollectionField(t *testing.T) {
	cmd := KeysCmd()
	cmd.SetArgs([]string{"list", "--field", "AUTH_TOKEN"})
	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a key collection")
}
