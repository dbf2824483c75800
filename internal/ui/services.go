package ui

import (
	"rubik-device/config"
	"rubik-device/internal/progress"
	"rubik-device/internal/solver"
	"rubik-device/internal/system"
	"rubik-device/internal/tools"
)

// Services 界面层依赖的业务服务集合，由 main 装配后注入各个 Screen
type Services struct {
	Config *config.Config
	Net    *tools.NetworkTools
	Sys    *tools.SystemTools
	Store  *progress.StateStore
	Runner *solver.Runner

	// Backlight 可为 nil（无背光节点的环境照常运行）
	Backlight *system.Backlight

	// LastTouch 返回触摸驱动最近一次的设计坐标（是否有效）
	LastTouch func() (int, int, bool)

	// Navigate 由 Manager 注入，屏幕之间跳转用
	Navigate func(name string) error
}

func (s *Services) navigate(name string) {
	if s.Navigate != nil {
		_ = s.Navigate(name)
	}
}
