package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/cropkit/internal/editor"
	"github.com/MeKo-Tech/cropkit/internal/gesture"
	"github.com/MeKo-Tech/cropkit/internal/geometry"
	"github.com/MeKo-Tech/cropkit/internal/loader"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("encoding health response failed", "error", err)
	}
}

// CreateSessionRequest opens an editing session for a source image inside a
// measured viewport.
type CreateSessionRequest struct {
	Source   string `json:"source"`
	Viewport struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"viewport"`
}

// createSessionHandler opens a session and starts resolving the image
// dimensions asynchronously. The session is usable once "loaded" is true.
func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Viewport.Width <= 0 || req.Viewport.Height <= 0 {
		s.writeErrorResponse(w, "viewport dimensions must be positive", http.StatusBadRequest)
		return
	}
	if req.Source == "" || !loader.IsSupportedImage(req.Source) {
		s.writeErrorResponse(w, "missing or unsupported image source", http.StatusBadRequest)
		return
	}

	ed := editor.New(s.editorOpts)
	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:         newSessionID(),
		ed:         ed,
		interp:     gesture.New(ed),
		cancelLoad: cancel,
		lastActive: time.Now(),
	}
	s.sessions.add(sess)

	vp := geometry.Viewport{Width: req.Viewport.Width, Height: req.Viewport.Height}
	results := s.loader.LoadAsync(ctx, req.Source)
	go func() {
		res, ok := <-results
		if !ok {
			return
		}
		sess.finishLoad(vp, res.Image, res.Err)
		if res.Err != nil {
			var loadErr *loader.ImageLoadError
			if errors.As(res.Err, &loadErr) {
				slog.Error("image load failed", "session_id", sess.id,
					"source", loadErr.Source, "attempts", loadErr.Attempts, "error", loadErr.Err)
			} else {
				slog.Error("image load failed", "session_id", sess.id, "error", res.Err)
			}
		}
	}()

	slog.Info("session created", "session_id", sess.id, "source", req.Source,
		"viewport_width", vp.Width, "viewport_height", vp.Height)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(s.sessionResponse(sess))
}

// sessionStateHandler reports load status and the current style descriptors.
func (s *Server) sessionStateHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.touch()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.sessionResponse(sess))
}

// deleteSessionHandler closes a session, cancelling any in-flight load.
func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.sessions.get(id); !ok {
		s.writeErrorResponse(w, "session not found", http.StatusNotFound)
		return
	}
	s.sessions.remove(id)
	slog.Info("session closed", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// controlHandler adapts one of the editor's control operations (reset, the
// flips, rotate) into an HTTP handler returning the updated descriptors.
func (s *Server) controlHandler(op func(*editor.Editor)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookup(w, r)
		if !ok {
			return
		}
		if loaded, _ := sess.state(); !loaded {
			s.writeErrorResponse(w, "session image not loaded", http.StatusConflict)
			return
		}
		sess.touch()
		op(sess.ed)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.sessionResponse(sess))
	}
}

// saveHandler projects the crop into source pixel space. A rejected save is
// a 409, not a server error; the client is expected to adjust and retry.
func (s *Server) saveHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if loaded, err := sess.state(); !loaded {
		if err != nil {
			s.writeErrorResponse(w, "image load failed: "+err.Error(), http.StatusConflict)
			return
		}
		s.writeErrorResponse(w, "session image not loaded", http.StatusConflict)
		return
	}
	sess.touch()

	result, saved := sess.ed.Save()
	if !saved {
		savesTotal.WithLabelValues("rejected").Inc()
		s.writeErrorResponse(w, "crop rectangle outside image bounds", http.StatusConflict)
		return
	}
	savesTotal.WithLabelValues("ok").Inc()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, ok := s.sessions.get(r.PathValue("id"))
	if !ok {
		s.writeErrorResponse(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func (s *Server) sessionResponse(sess *session) SessionResponse {
	loaded, loadErr := sess.state()
	resp := SessionResponse{ID: sess.id, Loaded: loaded}
	if loadErr != nil {
		resp.Error = loadErr.Error()
	}
	if loaded {
		img := sess.ed.ImageLayerStyle()
		overlay := sess.ed.CropOverlayStyle()
		resp.Image = &img
		resp.Overlay = &overlay
	}
	return resp
}
