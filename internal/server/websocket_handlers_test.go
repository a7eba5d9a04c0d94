package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gestureURL(srv *httptest.Server, id string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/session/" + id + "/gestures"
}

func dialGestures(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(gestureURL(srv, id), nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendGesture(t *testing.T, conn *websocket.Conn, msg GestureMessage) StyleMessage {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	var reply StyleMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "styles", reply.Type)
	return reply
}

func TestGestureSocket_ResizeDrag(t *testing.T) {
	server := newTestServer()
	srv := startTestServer(t, server)
	id := createTestSession(t, srv, writeWidePNG(t))
	require.True(t, waitForSession(t, srv, id).Loaded)

	conn := dialGestures(t, srv, id)

	// Touch down on the left edge of the full crop {0, 75, 300, 150}.
	reply := sendGesture(t, conn, GestureMessage{Phase: "begin", X: 0, Y: 150, Touches: 1})
	assert.Equal(t, []string{"left"}, reply.Overlay.ActiveEdges)

	reply = sendGesture(t, conn, GestureMessage{Phase: "move", DX: 60, Touches: 1})
	assert.InDelta(t, 60.0, reply.Overlay.Left, 1e-9)
	assert.InDelta(t, 240.0, reply.Overlay.Width, 1e-9)
	assert.InDelta(t, 75.0, reply.Overlay.Top, 1e-9)
	assert.InDelta(t, 150.0, reply.Overlay.Height, 1e-9)

	reply = sendGesture(t, conn, GestureMessage{Phase: "end"})
	assert.Empty(t, reply.Overlay.ActiveEdges, "highlight must clear on release")
	assert.InDelta(t, 60.0, reply.Overlay.Left, 1e-9, "the resize must stick")
}

func TestGestureSocket_PanDrag(t *testing.T) {
	server := newTestServer()
	srv := startTestServer(t, server)
	id := createTestSession(t, srv, writeWidePNG(t))
	require.True(t, waitForSession(t, srv, id).Loaded)

	conn := dialGestures(t, srv, id)

	// Shrink from the left so the crop has room to pan.
	sendGesture(t, conn, GestureMessage{Phase: "begin", X: 0, Y: 150, Touches: 1})
	sendGesture(t, conn, GestureMessage{Phase: "move", DX: 60, Touches: 1})
	sendGesture(t, conn, GestureMessage{Phase: "end"})

	// Grab the crop interior and slide it back.
	sendGesture(t, conn, GestureMessage{Phase: "begin", X: 180, Y: 150, Touches: 1})
	reply := sendGesture(t, conn, GestureMessage{Phase: "move", DX: -100, Touches: 1})
	sendGesture(t, conn, GestureMessage{Phase: "end"})

	// The pan clamps at the layout's left boundary.
	assert.InDelta(t, 0.0, reply.Overlay.Left, 1e-9)
	assert.InDelta(t, 240.0, reply.Overlay.Width, 1e-9)
}

func TestGestureSocket_Pinch(t *testing.T) {
	server := newTestServer()
	srv := startTestServer(t, server)
	id := createTestSession(t, srv, writeWidePNG(t))
	require.True(t, waitForSession(t, srv, id).Loaded)

	conn := dialGestures(t, srv, id)

	sendGesture(t, conn, GestureMessage{Phase: "begin", X: 150, Y: 150, Touches: 2})
	reply := sendGesture(t, conn, GestureMessage{Phase: "move", Touches: 2, PinchScale: 2.0})
	assert.InDelta(t, 2.0, reply.Image.Zoom, 1e-9)

	// Scale beyond the maximum clamps.
	reply = sendGesture(t, conn, GestureMessage{Phase: "move", Touches: 2, PinchScale: 50})
	assert.InDelta(t, 4.0, reply.Image.Zoom, 1e-9)

	sendGesture(t, conn, GestureMessage{Phase: "end"})
}

func TestGestureSocket_UnknownPhase(t *testing.T) {
	server := newTestServer()
	srv := startTestServer(t, server)
	id := createTestSession(t, srv, writeWidePNG(t))
	require.True(t, waitForSession(t, srv, id).Loaded)

	conn := dialGestures(t, srv, id)

	require.NoError(t, conn.WriteJSON(GestureMessage{Phase: "hover"}))
	var reply StyleMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Contains(t, reply.Error, "unknown gesture phase")
}

func TestGestureSocket_MalformedMessage(t *testing.T) {
	server := newTestServer()
	srv := startTestServer(t, server)
	id := createTestSession(t, srv, writeWidePNG(t))
	require.True(t, waitForSession(t, srv, id).Loaded)

	conn := dialGestures(t, srv, id)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{broken")))
	var reply StyleMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Contains(t, reply.Error, "failed to parse gesture")
}

func TestGestureSocket_SingleWriter(t *testing.T) {
	server := newTestServer()
	srv := startTestServer(t, server)
	id := createTestSession(t, srv, writeWidePNG(t))
	require.True(t, waitForSession(t, srv, id).Loaded)

	_ = dialGestures(t, srv, id)

	conn, resp, err := websocket.DefaultDialer.Dial(gestureURL(srv, id), nil) //nolint:bodyclose // closed below
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Contains(t, errResp.Error, "already connected")
}

func TestGestureSocket_UnknownSession(t *testing.T) {
	server := newTestServer()
	srv := startTestServer(t, server)

	conn, resp, err := websocket.DefaultDialer.Dial(gestureURL(srv, "deadbeef"), nil) //nolint:bodyclose // closed below
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, 404, resp.StatusCode)
}
