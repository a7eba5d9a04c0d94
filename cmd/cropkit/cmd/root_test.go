package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and captures its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	// The shared rootCmd keeps flag values between executions; clear any
	// help flag left set by a previous test run.
	if f := rootCmd.Flags().Lookup("help"); f != nil {
		_ = rootCmd.Flags().Set("help", "false")
	}
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "cropkit", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommandHelp(t *testing.T) {
	output, err := executeCommand(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, output, "crop geometry engine")
	assert.Contains(t, output, "Available Commands:")
	assert.Contains(t, output, "Usage:")
}

func TestRootCommandVersion(t *testing.T) {
	output, err := executeCommand(t, "--version")
	require.NoError(t, err)

	assert.Contains(t, output, "cropkit version")
	assert.Contains(t, output, "Commit:")

	// Reset so later executions do not inherit the flag.
	require.NoError(t, rootCmd.PersistentFlags().Set("version", "false"))
}

func TestRootCommandSubcommands(t *testing.T) {
	subcommands := rootCmd.Commands()
	commandNames := make([]string, len(subcommands))
	for i, subcmd := range subcommands {
		commandNames[i] = subcmd.Name()
	}

	expectedCommands := []string{"edit", "layout", "serve"}
	for _, expected := range expectedCommands {
		assert.Contains(t, commandNames, expected, "Expected subcommand '%s' not found", expected)
	}
}

func TestRootCommandInvalidFlag(t *testing.T) {
	output, err := executeCommand(t, "--invalid-flag")
	require.Error(t, err)
	assert.Contains(t, output, "unknown flag")
}

func TestGetRootCommand(t *testing.T) {
	assert.Same(t, rootCmd, GetRootCommand())
}

func TestGetConfigReturnsDefaults(t *testing.T) {
	cfg := GetConfig()
	require.NotNil(t, cfg)
	assert.Positive(t, cfg.Editor.MaxZoom)
	assert.Positive(t, cfg.Loader.MaxRetries)
}
