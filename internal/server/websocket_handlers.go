package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/cropkit/internal/editor"
	"github.com/MeKo-Tech/cropkit/internal/gesture"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// GestureMessage is one touch event tick sent by the client.
type GestureMessage struct {
	Phase      string  `json:"phase"` // "begin", "move", "end"
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	DX         float64 `json:"dx,omitempty"`
	DY         float64 `json:"dy,omitempty"`
	Touches    int     `json:"touches,omitempty"`
	PinchScale float64 `json:"pinch_scale,omitempty"`
}

// StyleMessage carries the recomputed style descriptors after a committed
// mutation, ready for the client's rendering layer.
type StyleMessage struct {
	Type    string                  `json:"type"`
	Image   editor.ImageLayerStyle  `json:"image"`
	Overlay editor.CropOverlayStyle `json:"overlay"`
	Error   string                  `json:"error,omitempty"`
}

// gestureSocketHandler upgrades to WebSocket and streams touch events into
// the session's interpreter. Only one socket may drive a session at a time,
// preserving the single-writer rule for the crop rectangle.
func (s *Server) gestureSocketHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.get(r.PathValue("id"))
	if !ok {
		s.writeErrorResponse(w, "session not found", http.StatusNotFound)
		return
	}
	if !sess.claimSocket() {
		s.writeErrorResponse(w, "session gesture stream already connected", http.StatusConflict)
		return
	}
	defer sess.releaseSocket()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("gesture stream connected", "session_id", sess.id, "remote_addr", r.RemoteAddr)
	s.handleGestureConnection(conn, sess)
}

// handleGestureConnection processes gesture messages from one connection.
func (s *Server) handleGestureConnection(conn *websocket.Conn, sess *session) {
	// Set read deadline to prevent hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Send ping messages to keep the connection alive
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("gesture stream error", "session_id", sess.id, "error", err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		sess.touch()
		s.handleGestureMessage(conn, sess, data)
	}
}

// handleGestureMessage applies one touch event and replies with the updated
// style descriptors.
func (s *Server) handleGestureMessage(conn *websocket.Conn, sess *session, data []byte) {
	var msg GestureMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendStyleError(conn, sess, fmt.Sprintf("failed to parse gesture: %v", err))
		return
	}

	ev := gesture.Event{
		X:          msg.X,
		Y:          msg.Y,
		DX:         msg.DX,
		DY:         msg.DY,
		Touches:    msg.Touches,
		PinchScale: msg.PinchScale,
	}
	switch msg.Phase {
	case "begin":
		ev.Phase = gesture.PhaseBegin
	case "move":
		ev.Phase = gesture.PhaseMove
	case "end":
		ev.Phase = gesture.PhaseEnd
	default:
		s.sendStyleError(conn, sess, fmt.Sprintf("unknown gesture phase %q", msg.Phase))
		return
	}

	sess.interp.Handle(ev)
	if msg.Phase == "begin" {
		gesturesTotal.WithLabelValues(sess.interp.Active().String()).Inc()
	}

	s.sendStyles(conn, sess, "")
}

func (s *Server) sendStyles(conn *websocket.Conn, sess *session, errMsg string) {
	msg := StyleMessage{
		Type:    "styles",
		Image:   sess.ed.ImageLayerStyle(),
		Overlay: sess.ed.CropOverlayStyle(),
		Error:   errMsg,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal style message", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("failed to write style message", "error", err)
	}
}

func (s *Server) sendStyleError(conn *websocket.Conn, sess *session, errMsg string) {
	s.sendStyles(conn, sess, errMsg)
}
