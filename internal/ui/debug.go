package ui

import (
	"fmt"

	"rubik-device/internal/display"
)

// DebugScreen 调试页：网络信息、最近触摸坐标十字线、命中测试按钮
type DebugScreen struct {
	BaseScreen
	svc  *Services
	back *Button

	targets   [3]*Button
	hits      [3]int
	ssid      string
	ip        string
	elapsed   int64
}

func NewDebugScreen(svc *Services) *DebugScreen {
	s := &DebugScreen{
		BaseScreen: NewBaseScreen("Debug"),
		svc:        svc,
	}

	// 三个命中测试靶区，点中计数
	for i := range s.targets {
		idx := i
		x := 20 + i*105
		s.targets[i] = s.reg.Add(x, 150, x+85, 195, func() {
			s.hits[idx]++
		}, nil, nil)
	}

	s.back = s.reg.Add(230, 205, 310, 235, func() {
		svc.navigate("settings")
	}, nil, nil)
	return s
}

func (s *DebugScreen) OnEnter() {
	s.refreshNetwork()
}

func (s *DebugScreen) Update(deltaMs int64) {
	s.elapsed += deltaMs
	if s.elapsed >= 2000 {
		s.elapsed = 0
		s.refreshNetwork()
	}
}

func (s *DebugScreen) refreshNetwork() {
	s.ssid = s.svc.Net.WiFiSSID()
	s.ip = s.svc.Net.LocalIP()
}

func (s *DebugScreen) Render(g *display.Graphics) {
	s.RenderHeader(g)

	_ = g.DrawTextTTF("SSID: "+s.ssid, 10, 25, display.ColorTextDebug, 12, display.FontWeightRegular)
	_ = g.DrawTextTTF("IP:   "+s.ip, 10, 42, display.ColorTextDebug, 12, display.FontWeightRegular)

	// 最近触摸位置
	if s.svc.LastTouch != nil {
		if x, y, ok := s.svc.LastTouch(); ok {
			_ = g.DrawTextTTF(fmt.Sprintf("Touch: %d,%d", x, y),
				10, 59, display.ColorTextPrimary, 12, display.FontWeightRegular)
			s.drawCrosshair(g, x, y)
		} else {
			_ = g.DrawTextTTF("Touch: -", 10, 59, display.ColorGray, 12, display.FontWeightRegular)
		}
	}

	for i, b := range s.targets {
		c := display.ColorBlue
		if b.Pressed() {
			c = display.ColorOrange
		}
		g.DrawRectRounded(b.X1, b.Y1, b.X2-b.X1, b.Y2-b.Y1, 6, c)
		g.DrawTextBox(fmt.Sprintf("T%d: %d", i+1, s.hits[i]),
			b.X1, b.Y1+14, b.X2, b.Y2, display.ColorTextInvert, 12, display.AlignCenter, 2)
	}

	g.DrawRectRounded(s.back.X1, s.back.Y1, s.back.X2-s.back.X1, s.back.Y2-s.back.Y1, 6, display.ColorHeader)
	g.DrawTextBox("BACK", s.back.X1, s.back.Y1+7, s.back.X2, s.back.Y2,
		display.ColorTextInvert, 12, display.AlignCenter, 2)
	if s.back.Pressed() {
		g.DrawRectRoundedOutline(s.back.X1, s.back.Y1, s.back.X2-s.back.X1, s.back.Y2-s.back.Y1, 6, display.ColorTextInvert)
	}
}

// drawCrosshair 触摸十字指示线
func (s *DebugScreen) drawCrosshair(g *display.Graphics, x, y int) {
	g.DrawLine(x-8, y, x+8, y, display.ColorTextDebug)
	g.DrawLine(x, y-8, x, y+8, display.ColorTextDebug)
	g.DrawCircleAA(x, y, 5, display.ColorTextDebug)
}
