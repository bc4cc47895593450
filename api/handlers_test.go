package api

import (
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"bongocat/animation"
	"bongocat/define"
	"bongocat/frames"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

type fakeAnimator struct {
	presses  int
	pressErr error
	snapshot animation.Snapshot
}

func (a *fakeAnimator) Press() error {
	if a.pressErr != nil {
		return a.pressErr
	}
	a.presses++
	return nil
}

func (a *fakeAnimator) Snapshot() animation.Snapshot { return a.snapshot }

func newTestEngine(t *testing.T, animator Animator) *gin.Engine {
	t.Helper()
	store, err := frames.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	return NewServer(animator, store, frames.DefaultPreviewOptions()).NewEngine()
}

func doRequest(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealth(t *testing.T) {
	r := newTestEngine(t, &fakeAnimator{})
	w := doRequest(r, http.MethodGet, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := decode(t, w)["data"].(map[string]any)
	if data["status"] != "healthy" {
		t.Fatalf("expected healthy, got %v", data["status"])
	}
}

func TestStatus(t *testing.T) {
	animator := &fakeAnimator{snapshot: animation.Snapshot{
		State:        define.FRAME_RIGHT_DOWN,
		StateName:    define.FRAME_RIGHT_DOWN.String(),
		KeyPresses:   4,
		Pushes:       3,
		PushFailures: 1,
		LastError:    "engine down",
	}}
	r := newTestEngine(t, animator)

	w := doRequest(r, http.MethodGet, "/api/status")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := decode(t, w)["data"].(map[string]any)
	if data["state"] != float64(2) || data["stateName"] != "right_down" {
		t.Fatalf("unexpected state: %v", data)
	}
	if data["pushes"] != float64(3) || data["pushFailures"] != float64(1) || data["lastError"] != "engine down" {
		t.Fatalf("unexpected counters: %v", data)
	}
	if _, ok := data["uptime"]; !ok {
		t.Fatal("expected uptime")
	}
}

func TestFrames(t *testing.T) {
	r := newTestEngine(t, &fakeAnimator{})

	w := doRequest(r, http.MethodGet, "/api/frames")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := decode(t, w)["data"].(map[string]any)
	if data["total"] != float64(4) {
		t.Fatalf("expected 4 frames, got %v", data["total"])
	}
	list := data["frames"].([]any)
	last := list[3].(map[string]any)
	if last["name"] != "both_down" || last["preview"] != "/api/frames/3" {
		t.Fatalf("unexpected frame info: %v", last)
	}
}

func TestFramePreview(t *testing.T) {
	r := newTestEngine(t, &fakeAnimator{})

	w := doRequest(r, http.MethodGet, "/api/frames/1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 512 || b.Dy() != 160 {
		t.Fatalf("expected 512x160 preview, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestFramePreviewRejectsBadIndex(t *testing.T) {
	r := newTestEngine(t, &fakeAnimator{})

	for _, path := range []string{"/api/frames/4", "/api/frames/-1", "/api/frames/cat"} {
		w := doRequest(r, http.MethodGet, path)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
		if decode(t, w)["status"] != "error" {
			t.Fatalf("%s: expected error status", path)
		}
	}
}

func TestKeyPress(t *testing.T) {
	animator := &fakeAnimator{}
	r := newTestEngine(t, animator)

	w := doRequest(r, http.MethodPost, "/api/keypress")
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if animator.presses != 1 {
		t.Fatalf("expected 1 press, got %d", animator.presses)
	}

	animator.pressErr = errors.New("stopped")
	w = doRequest(r, http.MethodPost, "/api/keypress")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
