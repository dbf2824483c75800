package ui

import (
	"time"

	"rubik-device/internal/display"
)

// Screen 一屏界面：自带按钮注册表，由 Manager 驱动渲染与触摸分发
type Screen interface {
	Name() string
	Registry() *Registry
	Render(g *display.Graphics)
	Update(deltaMs int64)
	OnEnter()
	OnExit()
}

// BaseScreen 所有界面的公共部分：标题栏 + 时钟 + 按钮注册表
type BaseScreen struct {
	title string
	reg   Registry
}

func NewBaseScreen(title string) BaseScreen {
	return BaseScreen{title: title}
}

func (b *BaseScreen) Name() string        { return b.title }
func (b *BaseScreen) Registry() *Registry { return &b.reg }

func (b *BaseScreen) Update(deltaMs int64) {}
func (b *BaseScreen) OnEnter()             {}
func (b *BaseScreen) OnExit()              {}

// RenderHeader 顶部状态栏：深色底、左侧标题、右侧时钟
func (b *BaseScreen) RenderHeader(g *display.Graphics) {
	w, _ := display.DesignSize()
	g.DrawRect(0, 0, w, display.HeaderHeight, display.ColorHeader)
	_ = g.DrawTextTTF(b.title, 2, 1, display.ColorTextInvert, 11, display.FontWeightRegular)

	clock := time.Now().Format("15:04")
	cw := g.MeasureText(clock, 11, display.FontWeightRegular)
	_ = g.DrawTextTTF(clock, w-cw-3, 1, display.ColorAccent, 11, display.FontWeightRegular)
}

// Position 设计坐标系内的九宫格定位：
// 第一个字符 l/c/r 为水平，第二个 u/c/d 为垂直，如 "ld" 为左下角
func Position(pos string, objW, objH, margin int) (int, int) {
	w, h := display.DesignSize()
	x, y := margin, margin
	if len(pos) >= 1 {
		switch pos[0] {
		case 'c':
			x = (w - objW) / 2
		case 'r':
			x = w - objW - margin
		}
	}
	if len(pos) >= 2 {
		switch pos[1] {
		case 'c':
			y = (h - objH) / 2
		case 'd':
			y = h - objH - margin
		}
	}
	return x, y
}
