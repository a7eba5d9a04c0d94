package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/MeKo-Tech/cropkit/internal/editor"
	"github.com/MeKo-Tech/cropkit/internal/gesture"
	"github.com/MeKo-Tech/cropkit/internal/geometry"
)

// session is one live editing session: an editor, its interpreter, and the
// cancellation handle of the asynchronous dimension load that seeds it.
type session struct {
	id string
	ed *editor.Editor

	// interp is fed only from the session's single gesture socket, which
	// preserves the single-writer discipline over the crop rectangle.
	interp *gesture.Interpreter

	cancelLoad context.CancelFunc

	mu         sync.Mutex
	lastActive time.Time
	loaded     bool
	loadErr    error
	socketBusy bool
}

func (sess *session) touch() {
	sess.mu.Lock()
	sess.lastActive = time.Now()
	sess.mu.Unlock()
}

// finishLoad publishes the load outcome. A result arriving after the session
// was cancelled is discarded by the loader, so this only ever runs for the
// winning request.
func (sess *session) finishLoad(vp geometry.Viewport, src editor.SourceImage, err error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		sess.loadErr = err
		return
	}
	sess.ed.SetContent(vp, src)
	sess.loaded = true
}

func (sess *session) state() (loaded bool, err error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.loaded, sess.loadErr
}

// claimSocket reserves the session's gesture stream. Only one socket may
// drive the interpreter at a time.
func (sess *session) claimSocket() bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.socketBusy {
		return false
	}
	sess.socketBusy = true
	return true
}

func (sess *session) releaseSocket() {
	sess.mu.Lock()
	sess.socketBusy = false
	sess.mu.Unlock()
}

// sessionRegistry tracks live sessions and expires idle ones.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
	timeout  time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func newSessionRegistry(timeout time.Duration) *sessionRegistry {
	r := &sessionRegistry{
		sessions: make(map[string]*session),
		timeout:  timeout,
		stop:     make(chan struct{}),
	}
	go r.reap()
	return r
}

func (r *sessionRegistry) add(sess *session) {
	r.mu.Lock()
	r.sessions[sess.id] = sess
	r.mu.Unlock()
	sessionsActive.Inc()
	sessionsTotal.Inc()
}

func (r *sessionRegistry) get(id string) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if ok {
		sess.cancelLoad()
		sessionsActive.Dec()
	}
}

func (r *sessionRegistry) closeAll() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.remove(id)
	}
}

// reap removes sessions idle for longer than the timeout.
func (r *sessionRegistry) reap() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
		}
		cutoff := time.Now().Add(-r.timeout)
		r.mu.Lock()
		var expired []string
		for id, sess := range r.sessions {
			sess.mu.Lock()
			idle := sess.lastActive.Before(cutoff)
			sess.mu.Unlock()
			if idle {
				expired = append(expired, id)
			}
		}
		r.mu.Unlock()
		for _, id := range expired {
			slog.Info("expiring idle session", "session_id", id)
			r.remove(id)
		}
	}
}

// newSessionID generates a random 16-byte hex identifier.
func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(buf)
}
