package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TestContext holds the state for CLI integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	WorkingDir string
	TempDir    string
	EnvVars    []string

	// Session server state
	Server *SessionServerWrapper

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   string

	// Test artifacts
	CreatedFiles []string
}

// NewTestContext creates a new test context rooted at the project directory.
func NewTestContext() (*TestContext, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	// Test execution may cd into the package directory; walk up to go.mod.
	currentDir := workingDir
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "go.mod")); err == nil {
			workingDir = currentDir
			break
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	tempDir, err := os.MkdirTemp("", "cropkit-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &TestContext{
		WorkingDir:   workingDir,
		TempDir:      tempDir,
		EnvVars:      []string{},
		CreatedFiles: []string{},
	}, nil
}

// Cleanup removes temporary artifacts and stops any running server.
func (testCtx *TestContext) Cleanup() error {
	var errs []error

	if testCtx.Server != nil {
		if err := testCtx.StopServer(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop server: %w", err))
		}
	}

	for _, file := range testCtx.CreatedFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", file, err))
		}
	}
	if testCtx.TempDir != "" {
		if err := os.RemoveAll(testCtx.TempDir); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove temp dir: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// GetTempDir returns a path inside the scenario's temp directory.
func (testCtx *TestContext) GetTempDir(name string) string {
	return filepath.Join(testCtx.TempDir, name)
}

// AddEnvVar records an environment variable for subsequent commands.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, name+"="+value)
}

// substituteCommandVariables expands the placeholders used in feature files.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	command = strings.ReplaceAll(command, "{temp_dir}", testCtx.TempDir)
	command = strings.ReplaceAll(command, "{working_dir}", testCtx.WorkingDir)
	return command
}
