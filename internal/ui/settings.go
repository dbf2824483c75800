package ui

import (
	"fmt"

	"rubik-device/internal/display"
	"rubik-device/internal/logger"
)

// 设置页布局（设计坐标 320x240）
var (
	settingsRowRects = [4][4]int{
		{11, 31, 256, 79},
		{11, 82, 256, 130},
		{11, 133, 256, 181},
		{11, 184, 256, 232},
	}
	settingsNavUp   = [4]int{270, 85, 312, 127}
	settingsNavDown = [4]int{270, 136, 312, 178}
	settingsNavBack = [4]int{270, 187, 312, 229}
)

const settingsRowsPerPage = 4

// settingsItem 一条设置项；action 为 nil 时仅展示
type settingsItem struct {
	label  func() string
	action func()
}

// SettingsScreen 设置页：左侧选项列表，右侧上/下翻页与返回
type SettingsScreen struct {
	BaseScreen
	svc  *Services
	rows [settingsRowsPerPage]*Button
	up   *Button
	down *Button
	back *Button

	items      []settingsItem
	page       int
	brightness int

	ssid    string
	ip      string
	elapsed int64
}

func NewSettingsScreen(svc *Services) *SettingsScreen {
	s := &SettingsScreen{
		BaseScreen: NewBaseScreen("Settings"),
		svc:        svc,
		brightness: 100,
	}
	s.buildItems()

	for i := range s.rows {
		idx := i
		r := settingsRowRects[i]
		s.rows[i] = s.reg.Add(r[0], r[1], r[2], r[3], func() {
			s.activateRow(idx)
		}, nil, nil)
	}
	s.up = s.reg.Add(settingsNavUp[0], settingsNavUp[1], settingsNavUp[2], settingsNavUp[3],
		func() { s.turnPage(-1) }, nil, nil)
	s.down = s.reg.Add(settingsNavDown[0], settingsNavDown[1], settingsNavDown[2], settingsNavDown[3],
		func() { s.turnPage(1) }, nil, nil)
	s.back = s.reg.Add(settingsNavBack[0], settingsNavBack[1], settingsNavBack[2], settingsNavBack[3],
		func() { svc.navigate("home") }, nil, nil)

	return s
}

func (s *SettingsScreen) buildItems() {
	s.items = []settingsItem{
		{
			label:  func() string { return "Debug screen" },
			action: func() { s.svc.navigate("debug") },
		},
		{
			label:  func() string { return "Solve progress" },
			action: func() { s.svc.navigate("progress") },
		},
		{
			label:  func() string { return fmt.Sprintf("Brightness: %d%%", s.brightness) },
			action: s.cycleBrightness,
		},
		{
			label: func() string {
				sec := 0
				if s.svc.Config.System.ScreenOffSeconds != nil {
					sec = *s.svc.Config.System.ScreenOffSeconds
				}
				return fmt.Sprintf("Screen off: %s", formatScreenOff(sec))
			},
		},
		{
			label: func() string { return "WiFi: " + s.ssid },
		},
		{
			label: func() string { return "IP: " + s.ip },
		},
		{
			label:  func() string { return "Shutdown" },
			action: s.shutdown,
		},
	}
}

func (s *SettingsScreen) pageCount() int {
	return (len(s.items) + settingsRowsPerPage - 1) / settingsRowsPerPage
}

func (s *SettingsScreen) turnPage(delta int) {
	n := s.pageCount()
	s.page = (s.page + delta + n) % n
}

func (s *SettingsScreen) activateRow(row int) {
	idx := s.page*settingsRowsPerPage + row
	if idx >= len(s.items) {
		return
	}
	if s.items[idx].action != nil {
		s.items[idx].action()
	}
}

// cycleBrightness 亮度 25 → 50 → 75 → 100 循环
func (s *SettingsScreen) cycleBrightness() {
	s.brightness += 25
	if s.brightness > 100 {
		s.brightness = 25
	}
	if s.svc.Backlight == nil {
		return
	}
	if err := s.svc.Backlight.SetPercent(s.brightness); err != nil {
		logger.Warn("设置亮度失败: %v", err)
	}
}

func (s *SettingsScreen) shutdown() {
	logger.Info("设置页: 触发关机")
	if err := s.svc.Sys.Shutdown(); err != nil {
		logger.Error("关机失败: %v", err)
	}
}

func (s *SettingsScreen) OnEnter() {
	s.page = 0
	s.refreshNetwork()
}

// Update 网络信息每 2 秒刷新一次
func (s *SettingsScreen) Update(deltaMs int64) {
	s.elapsed += deltaMs
	if s.elapsed >= 2000 {
		s.elapsed = 0
		s.refreshNetwork()
	}
}

func (s *SettingsScreen) refreshNetwork() {
	s.ssid = s.svc.Net.WiFiSSID()
	s.ip = s.svc.Net.LocalIP()
	if s.ssid == "" {
		s.ssid = "-"
	}
	if s.ip == "" {
		s.ip = "-"
	}
}

func (s *SettingsScreen) Render(g *display.Graphics) {
	s.RenderHeader(g)

	// 三块深色底板：选项区、页码区、导航区
	g.DrawRect(5, 30, 264-5, 234-30, display.ColorPanel)
	g.DrawRect(267, 30, 315-267, 79-30, display.ColorPanel)
	g.DrawRect(267, 81, 315-267, 233-81, display.ColorPanel)

	start := s.page * settingsRowsPerPage
	for i := range s.rows {
		r := settingsRowRects[i]
		idx := start + i
		if idx >= len(s.items) {
			continue
		}
		label := s.items[idx].label()
		_ = g.DrawTextTTF(label, r[0]+8, r[1]+(r[3]-r[1])/2-7,
			display.ColorTextInvert, 13, display.FontWeightRegular)
		if s.rows[i].Pressed() {
			g.DrawRectRoundedOutline(r[0], r[1], r[2]-r[0], r[3]-r[1], 6, display.ColorTextInvert)
		}
	}

	// 页码
	pg := fmt.Sprintf("%d/%d", s.page+1, s.pageCount())
	g.DrawTextBox(pg, 267, 45, 315, 65,
		display.ColorTextInvert, 12, display.AlignCenter, 2)

	s.renderNav(g, s.up, settingsNavUp, "^")
	s.renderNav(g, s.down, settingsNavDown, "v")
	s.renderNav(g, s.back, settingsNavBack, "<")
}

func (s *SettingsScreen) renderNav(g *display.Graphics, b *Button, r [4]int, glyph string) {
	g.DrawTextBox(glyph, r[0], r[1]+(r[3]-r[1])/2-8, r[2], r[3],
		display.ColorTextInvert, 15, display.AlignCenter, 2)
	if b.Pressed() {
		g.DrawRectRoundedOutline(r[0], r[1], r[2]-r[0], r[3]-r[1], 6, display.ColorTextInvert)
	}
}

func formatScreenOff(sec int) string {
	if sec <= 0 {
		return "never"
	}
	return fmt.Sprintf("%ds", sec)
}
