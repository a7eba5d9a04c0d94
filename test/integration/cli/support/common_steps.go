package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// iRunCommand executes a CLI command and records its outcome.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substituteCommandVariables(command)

	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = testCtx.WorkingDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)

	output, err := cmd.CombinedOutput()
	testCtx.LastOutput = string(output)
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)

	if err != nil {
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			testCtx.LastExitCode = exitError.ExitCode()
		} else {
			testCtx.LastExitCode = -1
		}
	} else {
		testCtx.LastExitCode = 0
	}

	return nil
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldContain verifies the output contains specific text.
func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldBeValidJSON verifies the output parses as JSON, skipping any
// leading non-JSON noise such as log lines.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	output := strings.TrimSpace(testCtx.LastOutput)

	jsonStart := -1
	for i, r := range output {
		if r == '{' || r == '[' {
			jsonStart = i
			break
		}
	}
	if jsonStart == -1 {
		return fmt.Errorf("no JSON found in output: %s", output)
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(output[jsonStart:]), &parsed); err != nil {
		return fmt.Errorf("output is not valid JSON: %w\nOutput: %s", err, output)
	}
	return nil
}

// theErrorShouldMention verifies the failure output mentions some text.
func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	combined := testCtx.LastOutput
	if testCtx.LastError != nil {
		combined += testCtx.LastError.Error()
	}
	if !strings.Contains(combined, errorText) {
		return fmt.Errorf("error output does not mention '%s'\nActual: %s", errorText, combined)
	}
	return nil
}

// theFileShouldExist verifies a file was produced.
func (testCtx *TestContext) theFileShouldExist(filename string) error {
	path := testCtx.substituteCommandVariables(filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	return nil
}

// aTestImageExistsAt writes a uniform PNG with the given dimensions.
func (testCtx *TestContext) aTestImageExistsAt(width, height int, filename string) error {
	path := testCtx.substituteCommandVariables(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	f, err := os.Create(path) //nolint:gosec // G304: test fixture path
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	testCtx.CreatedFiles = append(testCtx.CreatedFiles, path)
	return nil
}

// anEditScriptExistsAt writes the docstring content as an edit script.
func (testCtx *TestContext) anEditScriptExistsAt(filename string, content *godog.DocString) error {
	path := testCtx.substituteCommandVariables(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create script directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content.Content), 0o600); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}
	testCtx.CreatedFiles = append(testCtx.CreatedFiles, path)
	return nil
}

// RegisterCommonSteps registers the shared step definitions.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^a test image (\d+)x(\d+) pixels exists at "([^"]*)"$`, testCtx.aTestImageExistsAt)
	sc.Step(`^an edit script exists at "([^"]*)" with:$`, testCtx.anEditScriptExistsAt)
}
