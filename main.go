package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/host/v3"

	"rubik-device/config"
	"rubik-device/internal/api"
	"rubik-device/internal/display"
	"rubik-device/internal/logger"
	"rubik-device/internal/progress"
	"rubik-device/internal/realtime"
	"rubik-device/internal/robot"
	"rubik-device/internal/solver"
	"rubik-device/internal/system"
	"rubik-device/internal/tools"
	"rubik-device/internal/touch"
	"rubik-device/internal/ui"
)

var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "打印版本后退出")
	noTouch := flag.Bool("no-touch", false, "不启动触摸驱动（台架用 API 注入触摸）")
	noServo := flag.Bool("no-servo", false, "不连接 pigpiod（纯显示调试）")
	flag.Parse()

	if *showVersion {
		fmt.Println("rubik-device", version)
		return
	}

	if err := logger.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "日志初始化失败: %v\n", err)
	}
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("加载配置失败: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("配置无效: %v", err)
	}
	logger.Info("rubik-device %s 启动, 设备: %s", version, cfg.Device.Name)

	// ---- 显示 ----
	disp, err := display.NewDisplay(cfg.Device.Name,
		cfg.Display.Width, cfg.Display.Height, cfg.Display.FBDevice)
	if err != nil {
		logger.Fatal("创建显示失败: %v", err)
	}
	defer disp.Close()

	// 背光：可选，没有节点照常运行
	var backlight *system.Backlight
	if bl, err := system.DiscoverBacklight(); err != nil {
		logger.Warn("背光不可用: %v", err)
	} else {
		backlight = bl
		if cfg.System.Brightness != nil {
			if err := bl.SetPercent(*cfg.System.Brightness); err != nil {
				logger.Warn("设置初始亮度失败: %v", err)
			}
		}
	}

	// ---- 舵机 ----
	var servos *robot.Servos
	var pigpio *robot.PigpioClient
	if !*noServo {
		pc, err := robot.DialPigpio(cfg.Servo.PigpiodAddr)
		if err != nil {
			// 降级运行：界面照常，解法执行会报错
			logger.Warn("连接 pigpiod 失败，舵机不可用: %v", err)
		} else {
			pigpio = pc
			servos = robot.NewServos(pc, cfg.Servo)
			defer func() {
				servos.Off()
				_ = pigpio.Close()
			}()
		}
	}

	// ---- 进度链路 ----
	store := progress.NewStateStore()
	store.Set(progress.DefaultState())
	adapter := progress.NewAdapter()
	hub := realtime.NewHub()

	listeners := []progress.Listener{
		progress.ConsoleListener(),
		func(ev progress.Event) { store.Set(adapter.OnEvent(ev)) },
		hub.ProgressListener(),
	}
	if jl, path, closeJL, err := progress.JSONLFileListener("", "solve"); err != nil {
		logger.Warn("进度日志文件不可用: %v", err)
	} else {
		logger.Info("进度日志: %s", path)
		listeners = append(listeners, jl)
		defer closeJL()
	}

	var rotator robot.FaceRotator
	if servos != nil {
		rotator = servos
	} else {
		rotator = unavailableRotator{}
	}
	runner := solver.NewRunner(rotator, progress.MultiListener(listeners...))
	defer runner.Stop()

	// ---- 界面 ----
	screenOff := 0
	if cfg.System.ScreenOffSeconds != nil {
		screenOff = *cfg.System.ScreenOffSeconds
	}
	brightness := 100
	if cfg.System.Brightness != nil {
		brightness = *cfg.System.Brightness
	}
	manager := ui.NewManager(disp, ui.ManagerOptions{
		FrameRate:        cfg.Display.FrameRate,
		Backlight:        backlight,
		ScreenOffSeconds: screenOff,
		Brightness:       brightness,
	})

	// ---- 触摸 ----
	var touchDriver *touch.Driver
	if !*noTouch {
		if _, err := host.Init(); err != nil {
			logger.Warn("periph 初始化失败，触摸不可用: %v", err)
		} else {
			sampler, err := touch.NewSampler(touch.Pins{
				IRQ:  cfg.Touch.IRQPin,
				CS:   cfg.Touch.CSPin,
				CLK:  cfg.Touch.CLKPin,
				MOSI: cfg.Touch.MOSIPin,
				MISO: cfg.Touch.MISOPin,
			}, touch.Calibration{
				XMin: cfg.Touch.XMin, XMax: cfg.Touch.XMax,
				YMin: cfg.Touch.YMin, YMax: cfg.Touch.YMax,
				Width: cfg.Display.Width, Height: cfg.Display.Height,
				InvertX: cfg.Touch.InvertX, InvertY: cfg.Touch.InvertY,
			})
			if err != nil {
				logger.Warn("触摸采样器不可用: %v", err)
			} else {
				touchDriver = touch.NewDriver(sampler, touch.Callbacks{
					OnPress:   manager.OnTouchPress,
					OnMove:    manager.OnTouchMove,
					OnRelease: manager.OnTouchRelease,
				}, touch.Options{MoveThreshold: cfg.Touch.MoveThreshold})
				touchDriver.Start()
				defer touchDriver.Stop()
			}
		}
	}

	// ---- 页面装配 ----
	sys := tools.NewSystemTools()
	net := tools.NewNetworkTools("")
	svc := &ui.Services{
		Config:    cfg,
		Net:       net,
		Sys:       sys,
		Store:     store,
		Runner:    runner,
		Backlight: backlight,
		Navigate:  manager.SwitchTo,
	}
	if touchDriver != nil {
		svc.LastTouch = func() (int, int, bool) {
			p, ok := touchDriver.LastTouch()
			return p.X, p.Y, ok
		}
	}

	manager.Register("home", ui.NewHomeScreen(svc))
	manager.Register("settings", ui.NewSettingsScreen(svc))
	manager.Register("progress", ui.NewProgressScreen(svc))
	manager.Register("debug", ui.NewDebugScreen(svc))
	if err := manager.SwitchTo("home"); err != nil {
		logger.Fatal("进入主界面失败: %v", err)
	}

	// ---- API ----
	var server *api.Server
	if cfg.Server.Enabled {
		server = api.NewServer(cfg, sys, net, runner, store, manager, hub)
		if err := server.Start(); err != nil {
			logger.Error("启动 API 失败: %v", err)
		}
	}

	// 信号触发有序退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("收到信号 %v，退出", sig)
		manager.Stop()
	}()

	if err := manager.Run(); err != nil {
		logger.Error("显示循环出错: %v", err)
	}

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
	logger.Info("rubik-device 已退出")
}

// unavailableRotator 舵机缺席时的占位，执行立即失败
type unavailableRotator struct{}

func (unavailableRotator) RotateFace(face string, turns int, clockwise bool) error {
	return fmt.Errorf("舵机不可用（pigpiod 未连接）")
}
