package api

import (
	"bytes"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rubik-device/config"
	"rubik-device/internal/display"
	"rubik-device/internal/progress"
	"rubik-device/internal/realtime"
	"rubik-device/internal/solver"
	"rubik-device/internal/tools"
	"rubik-device/internal/ui"
)

type nopRotator struct{}

func (nopRotator) RotateFace(face string, turns int, clockwise bool) error { return nil }

type memDisplay struct {
	buf *image.RGBA
}

func (d *memDisplay) Init() error                          { return nil }
func (d *memDisplay) Close() error                         { return nil }
func (d *memDisplay) GetWidth() int                        { return d.buf.Rect.Dx() }
func (d *memDisplay) GetHeight() int                       { return d.buf.Rect.Dy() }
func (d *memDisplay) GetBackBuffer() *image.RGBA           { return d.buf }
func (d *memDisplay) Update() error                        { return nil }
func (d *memDisplay) PollEvents() bool                     { return false }
func (d *memDisplay) GetTouchEvents() []display.TouchEvent { return nil }

type blankScreen struct {
	name string
	reg  ui.Registry
}

func (s *blankScreen) Name() string               { return s.name }
func (s *blankScreen) Registry() *ui.Registry     { return &s.reg }
func (s *blankScreen) Render(*display.Graphics)   {}
func (s *blankScreen) Update(int64)               {}
func (s *blankScreen) OnEnter()                   {}
func (s *blankScreen) OnExit()                    {}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	store := progress.NewStateStore()
	store.Set(progress.DefaultState())
	runner := solver.NewRunner(nopRotator{}, func(progress.Event) {})

	w, h := display.DesignSize()
	m := ui.NewManager(&memDisplay{buf: image.NewRGBA(image.Rect(0, 0, w, h))}, ui.ManagerOptions{})
	m.Register("home", &blankScreen{name: "home"})
	m.Register("progress", &blankScreen{name: "progress"})
	if err := m.SwitchTo("home"); err != nil {
		t.Fatal(err)
	}

	return NewServer(cfg, tools.NewSystemTools(), tools.NewNetworkTools(""),
		runner, store, m, realtime.NewHub())
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatal("缺少 data 字段")
	}
	if data["screen"] != "home" {
		t.Fatalf("screen = %v", data["screen"])
	}
}

func TestHandleScreenPNG(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/screen.png", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("Content-Type = %q", ct)
	}
	// PNG 魔数
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatal("响应不是 PNG")
	}
}

func TestHandleSolveSwitchesToProgress(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"solution": "U R2"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/solve", body)
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if s.manager.Current() != "progress" {
		t.Fatalf("下发解法后页面 = %q", s.manager.Current())
	}

	// 等执行完，避免影响后续断言
	deadline := time.Now().Add(2 * time.Second)
	for s.runner.Running() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandleSolveMissingSolution(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/solve", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHandleTouchTap(t *testing.T) {
	s := newTestServer(t)

	clicked := 0
	scr := &blankScreen{name: "bench"}
	scr.reg.Add(0, 0, 50, 50, func() { clicked++ }, nil, nil)
	s.manager.Register("bench", scr)
	if err := s.manager.SwitchTo("bench"); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/touch",
		bytes.NewBufferString(`{"x": 25, "y": 25}`))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if clicked != 1 {
		t.Fatalf("clicked = %d", clicked)
	}
}

func TestHandleTouchUnknownType(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/touch",
		bytes.NewBufferString(`{"type": "hover", "x": 1, "y": 1}`))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
