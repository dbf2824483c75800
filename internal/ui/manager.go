package ui

import (
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"rubik-device/internal/display"
	"rubik-device/internal/logger"
	"rubik-device/internal/system"
)

// Manager 界面管理器：显式的名字→Screen 注册表，负责渲染循环、
// 触摸事件分发和熄屏/唤醒
type Manager struct {
	disp     display.Display
	graphics *display.Graphics

	mu          sync.Mutex
	screens     map[string]Screen
	current     Screen
	currentName string // 注册键，非 Screen.Name()
	prevName    string

	// 触摸分发在 m.mu 之外执行（回调里允许再进 SwitchTo）；
	// dispatchMu 保证同一时刻只有一个手势事件在分发
	dispatchMu  sync.Mutex
	dispatching bool
	pendingName string

	frameRate int

	// 熄屏管理
	backlight        *system.Backlight
	screenOffSeconds int
	brightness       int
	lastActivity     time.Time
	screenOff        bool
	swallowGesture   bool

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// ManagerOptions Manager 的可选配置
type ManagerOptions struct {
	FrameRate        int // 每秒帧数，默认 10
	Backlight        *system.Backlight
	ScreenOffSeconds int // 0 表示不熄屏
	Brightness       int // 唤醒后的亮度百分比，默认 100
}

func NewManager(disp display.Display, opt ManagerOptions) *Manager {
	if opt.FrameRate <= 0 {
		opt.FrameRate = 10
	}
	if opt.Brightness <= 0 || opt.Brightness > 100 {
		opt.Brightness = 100
	}
	return &Manager{
		disp:             disp,
		graphics:         display.NewGraphics(disp.GetBackBuffer()),
		screens:          make(map[string]Screen),
		frameRate:        opt.FrameRate,
		backlight:        opt.Backlight,
		screenOffSeconds: opt.ScreenOffSeconds,
		brightness:       opt.Brightness,
		lastActivity:     time.Now(),
	}
}

// Register 注册页面
func (m *Manager) Register(name string, s Screen) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.screens[name] = s
}

// SwitchTo 切换页面：退出旧页面、清空其按钮状态、进入新页面。
// 在按钮回调里调用时只做排队，当前手势分发完后立即生效。
func (m *Manager) SwitchTo(name string) error {
	m.mu.Lock()
	if _, ok := m.screens[name]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("页面不存在: %s", name)
	}
	if m.dispatching {
		m.pendingName = name
		m.mu.Unlock()
		return nil
	}
	defer m.mu.Unlock()
	return m.switchToLocked(name)
}

func (m *Manager) switchToLocked(name string) error {
	s, ok := m.screens[name]
	if !ok {
		return fmt.Errorf("页面不存在: %s", name)
	}
	if m.currentName == name {
		return nil
	}
	if m.current != nil {
		m.current.OnExit()
		m.current.Registry().Reset()
		m.prevName = m.currentName
	}
	m.current = s
	m.currentName = name
	s.OnEnter()
	logger.Info("切换页面: %s", name)
	return nil
}

// Back 返回上一页
func (m *Manager) Back() {
	m.mu.Lock()
	prev := m.prevName
	m.mu.Unlock()
	if prev != "" {
		_ = m.SwitchTo(prev)
	}
}

// Current 当前页面的注册键
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentName
}

// OnTouchPress 触摸驱动回调入口（驱动 goroutine 调用）
func (m *Manager) OnTouchPress(x, y int) {
	m.dispatchGesture(x, y, display.TouchDown)
}

func (m *Manager) OnTouchMove(x, y int) {
	m.dispatchGesture(x, y, display.TouchMove)
}

func (m *Manager) OnTouchRelease(x, y int) {
	m.dispatchGesture(x, y, display.TouchUp)
}

// dispatchGesture 把一个手势事件交给当前页面的按钮注册表。
// 回调在 m.mu 之外执行，回调里调用 SwitchTo/Back 不会死锁；
// 回调期间请求的切页在分发结束后立即应用。
func (m *Manager) dispatchGesture(x, y int, phase display.TouchType) {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	switch phase {
	case display.TouchDown:
		if m.wakeLocked() {
			// 熄屏状态下的第一下触摸只用来点亮屏幕
			m.swallowGesture = true
			m.mu.Unlock()
			return
		}
	default:
		m.lastActivity = time.Now()
		if m.swallowGesture {
			if phase == display.TouchUp {
				m.swallowGesture = false
			}
			m.mu.Unlock()
			return
		}
	}
	cur := m.current
	m.dispatching = true
	m.mu.Unlock()

	// 回调 panic 也要复位 dispatching 并应用排队的切页
	defer func() {
		m.mu.Lock()
		m.dispatching = false
		pending := m.pendingName
		m.pendingName = ""
		if pending != "" {
			_ = m.switchToLocked(pending)
		}
		m.mu.Unlock()
	}()

	if cur != nil {
		reg := cur.Registry()
		switch phase {
		case display.TouchDown:
			reg.DispatchPress(x, y)
		case display.TouchMove:
			reg.DispatchMove(x, y)
		case display.TouchUp:
			reg.DispatchRelease(x, y)
		}
	}
}

// wakeLocked 记录活动时间；若之前处于熄屏状态则点亮并返回 true
func (m *Manager) wakeLocked() bool {
	m.lastActivity = time.Now()
	if !m.screenOff {
		return false
	}
	m.screenOff = false
	if m.backlight != nil {
		if err := m.backlight.SetPercent(m.brightness); err != nil {
			logger.Warn("点亮背光失败: %v", err)
		}
	}
	return true
}

func (m *Manager) maybeScreenOffLocked() {
	if m.screenOffSeconds <= 0 || m.screenOff || m.backlight == nil {
		return
	}
	if time.Since(m.lastActivity) < time.Duration(m.screenOffSeconds)*time.Second {
		return
	}
	if err := m.backlight.Off(); err != nil {
		logger.Warn("熄屏失败: %v", err)
		return
	}
	m.screenOff = true
	logger.Info("空闲 %ds，已熄屏", m.screenOffSeconds)
}

// Run 渲染主循环，阻塞直到 Stop 或预览窗口关闭
func (m *Manager) Run() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("显示循环已在运行")
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()
	defer close(doneCh)

	interval := time.Second / time.Duration(m.frameRate)
	lastTime := time.Now()

	for {
		select {
		case <-stopCh:
			return nil
		default:
		}

		if m.disp.PollEvents() {
			return nil
		}
		m.dispatchPreviewTouches()

		now := time.Now()
		delta := now.Sub(lastTime).Milliseconds()
		lastTime = now

		m.mu.Lock()
		cur := m.current
		if cur != nil {
			cur.Update(delta)
		}
		m.graphics.Clear(display.ColorBackground)
		if cur != nil {
			cur.Render(m.graphics)
		}
		m.maybeScreenOffLocked()
		m.mu.Unlock()

		if err := m.disp.Update(); err != nil {
			return fmt.Errorf("刷新显示失败: %w", err)
		}

		time.Sleep(interval)
	}
}

// dispatchPreviewTouches 预览后端的鼠标事件：换算到设计坐标后
// 复用触摸驱动的分发入口
func (m *Manager) dispatchPreviewTouches() {
	events := m.disp.GetTouchEvents()
	if len(events) == 0 {
		return
	}
	dw, dh := display.DesignSize()
	pw, ph := m.disp.GetWidth(), m.disp.GetHeight()
	for _, ev := range events {
		x, y := ev.X, ev.Y
		if pw > 0 && ph > 0 {
			x = ev.X * dw / pw
			y = ev.Y * dh / ph
		}
		switch ev.Type {
		case display.TouchDown:
			m.OnTouchPress(x, y)
		case display.TouchMove:
			m.OnTouchMove(x, y)
		case display.TouchUp:
			m.OnTouchRelease(x, y)
		}
	}
}

// Stop 停止渲染循环并等待退出
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	doneCh := m.doneCh
	m.mu.Unlock()

	select {
	case <-doneCh:
	case <-time.After(2 * time.Second):
		logger.Warn("显示循环未在超时内退出")
	}
}

// Snapshot 当前帧的拷贝，供 API 截屏用
func (m *Manager) Snapshot() *image.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.disp.GetBackBuffer()
	if src == nil {
		return nil
	}
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}
