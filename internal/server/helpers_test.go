package server

import (
	"bytes"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/cropkit/internal/editor"
	"github.com/MeKo-Tech/cropkit/internal/loader"
	"github.com/MeKo-Tech/cropkit/internal/testutil"
)

// newTestServer creates a server with a fast retry policy and no rate
// limiting, suitable for httptest-driven tests.
func newTestServer() *Server {
	return NewServer(Config{
		CORSOrigin:     "*",
		MaxUploadMB:    10,
		SessionTimeout: time.Minute,
		EditorOptions:  editor.DefaultOptions(),
		LoaderConfig:   loader.Config{MaxRetries: 2, RetryDelay: time.Millisecond},
	})
}

// startTestServer wires the server's routes into an httptest server and
// registers cleanup for both.
func startTestServer(t *testing.T, s *Server) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { _ = s.Close() })
	return srv
}

// createTestSession opens a session for source in a 300x300 viewport and
// returns its ID.
func createTestSession(t *testing.T, srv *httptest.Server, source string) string {
	t.Helper()
	body := map[string]any{
		"source":   source,
		"viewport": map[string]float64{"width": 300, "height": 300},
	}
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/session", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sr SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sr))
	require.NotEmpty(t, sr.ID)
	return sr.ID
}

// waitForSession polls the session state until the image load settles, in
// either direction, and returns the final state.
func waitForSession(t *testing.T, srv *httptest.Server, id string) SessionResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		sr := getSessionState(t, srv, id)
		if sr.Loaded || sr.Error != "" || time.Now().After(deadline) {
			return sr
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func getSessionState(t *testing.T, srv *httptest.Server, id string) SessionResponse {
	t.Helper()
	resp, err := http.Get(srv.URL + "/session/" + id)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sr SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sr))
	return sr
}

// postControl issues one of the session control operations and returns the
// HTTP response; the caller owns the body.
func postControl(t *testing.T, srv *httptest.Server, id, op string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/session/"+id+"/"+op, "application/json", http.NoBody)
	require.NoError(t, err)
	return resp
}

// writeWidePNG writes the 200x100 fixture image and returns its path.
func writeWidePNG(t *testing.T) string {
	t.Helper()
	return testutil.WriteTempPNG(t, t.TempDir(), testutil.WideSize, color.White)
}
