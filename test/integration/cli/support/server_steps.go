package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/cropkit/internal/editor"
	"github.com/MeKo-Tech/cropkit/internal/loader"
	"github.com/MeKo-Tech/cropkit/internal/server"
)

// SessionServerWrapper runs the session server in-process behind httptest,
// so server scenarios need no port management or separate binary.
type SessionServerWrapper struct {
	srv        *server.Server
	httpServer *httptest.Server
	sessionID  string
}

// theSessionServerIsRunning starts an in-process session server.
func (testCtx *TestContext) theSessionServerIsRunning() error {
	if testCtx.Server != nil {
		return nil
	}

	s := server.NewServer(server.Config{
		CORSOrigin:     "*",
		MaxUploadMB:    10,
		SessionTimeout: time.Minute,
		EditorOptions:  editor.DefaultOptions(),
		LoaderConfig:   loader.Config{MaxRetries: 3, RetryDelay: 10 * time.Millisecond},
	})
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	testCtx.Server = &SessionServerWrapper{
		srv:        s,
		httpServer: httptest.NewServer(mux),
	}
	return nil
}

// StopServer shuts down the in-process server.
func (testCtx *TestContext) StopServer() error {
	if testCtx.Server == nil {
		return nil
	}
	testCtx.Server.httpServer.Close()
	err := testCtx.Server.srv.Close()
	testCtx.Server = nil
	return err
}

func (testCtx *TestContext) serverURL(path string) (string, error) {
	if testCtx.Server == nil {
		return "", fmt.Errorf("session server is not running")
	}
	return testCtx.Server.httpServer.URL + path, nil
}

func (testCtx *TestContext) recordResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(body)
	return nil
}

// iCreateASessionFor opens an editing session for an image path.
func (testCtx *TestContext) iCreateASessionFor(imagePath string, width, height int) error {
	url, err := testCtx.serverURL("/session")
	if err != nil {
		return err
	}

	payload := map[string]any{
		"source": testCtx.substituteCommandVariables(imagePath),
		"viewport": map[string]int{
			"width":  width,
			"height": height,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(data)) //nolint:gosec // G107: test server URL
	if err != nil {
		return fmt.Errorf("session request failed: %w", err)
	}
	if err := testCtx.recordResponse(resp); err != nil {
		return err
	}

	if resp.StatusCode == http.StatusCreated {
		var sr struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &sr); err != nil {
			return fmt.Errorf("failed to parse session response: %w", err)
		}
		testCtx.Server.sessionID = sr.ID
	}
	return nil
}

// theSessionShouldFinishLoading polls the session until the load settles.
func (testCtx *TestContext) theSessionShouldFinishLoading() error {
	url, err := testCtx.serverURL("/session/" + testCtx.Server.sessionID)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url) //nolint:gosec // G107: test server URL
		if err != nil {
			return fmt.Errorf("session state request failed: %w", err)
		}
		if err := testCtx.recordResponse(resp); err != nil {
			return err
		}

		var sr struct {
			Loaded bool   `json:"loaded"`
			Error  string `json:"error"`
		}
		if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &sr); err != nil {
			return fmt.Errorf("failed to parse session state: %w", err)
		}
		if sr.Loaded {
			return nil
		}
		if sr.Error != "" {
			return fmt.Errorf("image load failed: %s", sr.Error)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("session did not finish loading in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// iSendAControlRequest issues one of the session control operations.
func (testCtx *TestContext) iSendAControlRequest(op string) error {
	url, err := testCtx.serverURL("/session/" + testCtx.Server.sessionID + "/" + op)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", http.NoBody) //nolint:gosec // G107: test server URL
	if err != nil {
		return fmt.Errorf("control request failed: %w", err)
	}
	return testCtx.recordResponse(resp)
}

// iRequestTheSessionState fetches the current session state.
func (testCtx *TestContext) iRequestTheSessionState() error {
	url, err := testCtx.serverURL("/session/" + testCtx.Server.sessionID)
	if err != nil {
		return err
	}
	resp, err := http.Get(url) //nolint:gosec // G107: test server URL
	if err != nil {
		return fmt.Errorf("session state request failed: %w", err)
	}
	return testCtx.recordResponse(resp)
}

// theResponseStatusShouldBe verifies the last HTTP status code.
func (testCtx *TestContext) theResponseStatusShouldBe(status int) error {
	if testCtx.LastHTTPStatusCode != status {
		return fmt.Errorf("expected status %d, got %d\nResponse: %s",
			status, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseShouldContain verifies the response body mentions some text.
func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nActual: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseFieldShouldBe verifies a numeric field of the JSON response.
func (testCtx *TestContext) theResponseFieldShouldBe(field string, value float64) error {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &parsed); err != nil {
		return fmt.Errorf("response is not a JSON object: %w\nResponse: %s", err, testCtx.LastHTTPResponse)
	}

	// Dotted paths address nested objects, e.g. "image.rotation".
	current := parsed
	parts := strings.Split(field, ".")
	for i, part := range parts {
		raw, ok := current[part]
		if !ok {
			return fmt.Errorf("field %q not found in response: %s", field, testCtx.LastHTTPResponse)
		}
		if i == len(parts)-1 {
			num, ok := raw.(float64)
			if !ok {
				return fmt.Errorf("field %q is not numeric: %v", field, raw)
			}
			if math.Abs(num-value) > 1e-6 {
				return fmt.Errorf("field %q = %g, expected %g", field, num, value)
			}
			return nil
		}
		current, ok = raw.(map[string]interface{})
		if !ok {
			return fmt.Errorf("field %q is not an object", part)
		}
	}
	return nil
}

// RegisterServerSteps registers the session server step definitions.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the session server is running$`, testCtx.theSessionServerIsRunning)
	sc.Step(`^I create a session for "([^"]*)" in a (\d+)x(\d+) viewport$`, testCtx.iCreateASessionFor)
	sc.Step(`^the session should finish loading$`, testCtx.theSessionShouldFinishLoading)
	sc.Step(`^I send a "([^"]*)" control request$`, testCtx.iSendAControlRequest)
	sc.Step(`^I request the session state$`, testCtx.iRequestTheSessionState)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response field "([^"]*)" should be ([0-9.]+)$`, testCtx.theResponseFieldShouldBe)
}
