package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"rubik-device/config"
	"rubik-device/internal/display"
	"rubik-device/internal/progress"
	"rubik-device/internal/robot"
	"rubik-device/internal/solver"
	"rubik-device/internal/tools"
	"rubik-device/internal/ui"
)

// 离屏渲染工具：把每个页面渲染成 PNG，不碰任何硬件。
// 改界面布局时跑一遍，肉眼比对输出。

type offscreenDisplay struct {
	buf *image.RGBA
}

func (d *offscreenDisplay) Init() error                          { return nil }
func (d *offscreenDisplay) Close() error                         { return nil }
func (d *offscreenDisplay) GetWidth() int                        { return d.buf.Rect.Dx() }
func (d *offscreenDisplay) GetHeight() int                       { return d.buf.Rect.Dy() }
func (d *offscreenDisplay) GetBackBuffer() *image.RGBA           { return d.buf }
func (d *offscreenDisplay) Update() error                        { return nil }
func (d *offscreenDisplay) PollEvents() bool                     { return false }
func (d *offscreenDisplay) GetTouchEvents() []display.TouchEvent { return nil }

type nopRotator struct{}

func (nopRotator) RotateFace(face string, turns int, clockwise bool) error { return nil }

var _ robot.FaceRotator = nopRotator{}

func main() {
	outDir := flag.String("out", "screenshots", "PNG 输出目录")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("创建输出目录失败: %v", err)
	}

	cfg := config.DefaultConfig()
	w, h := display.DesignSize()
	disp := &offscreenDisplay{buf: image.NewRGBA(image.Rect(0, 0, w, h))}

	store := progress.NewStateStore()
	store.Set(progress.State{
		Line1: " 42% execute",
		Line2: "Executing x2 (5/12)",
		Pct:   0.42,
	})

	svc := &ui.Services{
		Config: cfg,
		Net:    tools.NewNetworkTools(""),
		Sys:    tools.NewSystemTools(),
		Store:  store,
		Runner: solver.NewRunner(nopRotator{}, nil),
		LastTouch: func() (int, int, bool) {
			return 160, 120, true
		},
	}

	screens := map[string]ui.Screen{
		"home":     ui.NewHomeScreen(svc),
		"settings": ui.NewSettingsScreen(svc),
		"progress": ui.NewProgressScreen(svc),
		"debug":    ui.NewDebugScreen(svc),
	}

	g := display.NewGraphics(disp.GetBackBuffer())
	for name, scr := range screens {
		scr.OnEnter()
		scr.Update(0)
		g.Clear(display.ColorBackground)
		scr.Render(g)

		path := filepath.Join(*outDir, name+".png")
		f, err := os.Create(path)
		if err != nil {
			log.Fatalf("创建 %s 失败: %v", path, err)
		}
		if err := png.Encode(f, disp.GetBackBuffer()); err != nil {
			log.Fatalf("编码 %s 失败: %v", path, err)
		}
		f.Close()
		fmt.Println("已输出:", path)
	}
}
