package ui

import (
	"rubik-device/internal/display"
	"rubik-device/internal/logger"
)

const homeIconSize = 16

// HomeScreen 主界面：欢迎语 + 左下关机、右下设置
type HomeScreen struct {
	BaseScreen
	svc *Services
}

func NewHomeScreen(svc *Services) *HomeScreen {
	s := &HomeScreen{
		BaseScreen: NewBaseScreen("Rubik Robot"),
		svc:        svc,
	}

	px, py := Position("ld", homeIconSize, homeIconSize, 5)
	s.reg.Add(px, py, px+homeIconSize, py+homeIconSize, func() {
		logger.Info("主界面: 触发关机")
		if err := svc.Sys.Shutdown(); err != nil {
			logger.Error("关机失败: %v", err)
		}
	}, nil, nil)

	gx, gy := Position("rd", homeIconSize, homeIconSize, 5)
	s.reg.Add(gx, gy, gx+homeIconSize, gy+homeIconSize, func() {
		svc.navigate("settings")
	}, nil, nil)

	// 中部状态区整块可点，跳到进度页
	s.reg.Add(60, 120, 260, 170, func() {
		svc.navigate("progress")
	}, nil, nil)

	return s
}

func (s *HomeScreen) Render(g *display.Graphics) {
	s.RenderHeader(g)
	w, _ := display.DesignSize()

	g.DrawTextBox("Welcome", 0, 40, w, 80,
		display.ColorTextPrimary, 22, display.AlignCenter, 4)
	g.DrawTextBox("Place a cube and solve",
		0, 80, w, 110, display.ColorGray, 12, display.AlignCenter, 2)

	// 状态区：显示求解进度摘要
	st := s.svc.Store.Get()
	g.DrawRectRounded(60, 120, 200, 50, 6, display.ColorHeader)
	g.DrawTextBox(st.Line1, 64, 128, 256, 146,
		display.ColorTextInvert, 12, display.AlignCenter, 2)
	g.DrawTextBox(st.Line2, 64, 148, 256, 164,
		display.ColorAccent, 10, display.AlignCenter, 2)

	s.renderPowerIcon(g)
	s.renderSettingsIcon(g)
}

// renderPowerIcon 电源符号：圆环加缺口处一竖
func (s *HomeScreen) renderPowerIcon(g *display.Graphics) {
	x, y := Position("ld", homeIconSize, homeIconSize, 5)
	cx := x + homeIconSize/2
	cy := y + homeIconSize/2
	g.DrawCircleAA(cx, cy, homeIconSize/2-1, display.ColorDangerRed)
	g.DrawRect(cx-1, y-1, 3, homeIconSize/2, display.ColorBackground)
	g.DrawRect(cx, y, 1, homeIconSize/2, display.ColorDangerRed)
}

// renderSettingsIcon 设置符号：圆环加四个刻度
func (s *HomeScreen) renderSettingsIcon(g *display.Graphics) {
	x, y := Position("rd", homeIconSize, homeIconSize, 5)
	cx := x + homeIconSize/2
	cy := y + homeIconSize/2
	r := homeIconSize/2 - 2
	g.DrawCircleAA(cx, cy, r, display.ColorGray)
	g.DrawRect(cx-1, cy-r-2, 3, 4, display.ColorGray)
	g.DrawRect(cx-1, cy+r-2, 3, 4, display.ColorGray)
	g.DrawRect(cx-r-2, cy-1, 4, 3, display.ColorGray)
	g.DrawRect(cx+r-2, cy-1, 4, 3, display.ColorGray)
}
