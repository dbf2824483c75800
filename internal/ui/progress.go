package ui

import (
	"image/color"

	"rubik-device/internal/display"
	"rubik-device/internal/logger"
)

// ProgressScreen 求解进度页：两行状态 + 百分比条 + 停止/返回
type ProgressScreen struct {
	BaseScreen
	svc  *Services
	stop *Button
	back *Button
}

func NewProgressScreen(svc *Services) *ProgressScreen {
	s := &ProgressScreen{
		BaseScreen: NewBaseScreen("Progress"),
		svc:        svc,
	}
	s.stop = s.reg.Add(20, 195, 120, 230, func() {
		logger.Info("进度页: 请求停止执行")
		svc.Runner.Stop()
	}, nil, nil)
	s.back = s.reg.Add(200, 195, 300, 230, func() {
		svc.navigate("home")
	}, nil, nil)
	return s
}

func (s *ProgressScreen) Render(g *display.Graphics) {
	s.RenderHeader(g)
	w, _ := display.DesignSize()

	st := s.svc.Store.Get()
	g.DrawTextBox(st.Line1, 10, 55, w-10, 90,
		display.ColorTextPrimary, 15, display.AlignCenter, 3)
	g.DrawTextBox(st.Line2, 10, 95, w-10, 120,
		display.ColorGray, 11, display.AlignCenter, 2)

	g.DrawProgressBar(20, 140, w-40, 18, st.Pct,
		display.ColorProgressTrack, display.ColorProgressFill)

	running := s.svc.Runner.Running()
	if running {
		s.renderButton(g, s.stop, "STOP", display.ColorDangerRed)
	}
	s.renderButton(g, s.back, "BACK", display.ColorHeader)
}

func (s *ProgressScreen) renderButton(g *display.Graphics, b *Button, label string, c color.Color) {
	g.DrawRectRounded(b.X1, b.Y1, b.X2-b.X1, b.Y2-b.Y1, 6, c)
	g.DrawTextBox(label, b.X1, b.Y1+9, b.X2, b.Y2,
		display.ColorTextInvert, 13, display.AlignCenter, 2)
	if b.Pressed() {
		g.DrawRectRoundedOutline(b.X1, b.Y1, b.X2-b.X1, b.Y2-b.Y1, 6, display.ColorTextInvert)
	}
}
