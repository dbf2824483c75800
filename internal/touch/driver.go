package touch

import (
	"sync"
	"time"

	"rubik-device/internal/logger"
)

// GestureState 手势状态；只由轮询协程修改，外部通过快照读取
type GestureState int

const (
	StateIdle GestureState = iota
	StatePressed
	StateMoving
)

func (s GestureState) String() string {
	switch s {
	case StatePressed:
		return "pressed"
	case StateMoving:
		return "moving"
	default:
		return "idle"
	}
}

// Callbacks 手势回调。同一手势内回调按 press → move* → release 顺序串行触发。
// 回调内部 panic 会被捕获并记录，不会杀死轮询协程。
type Callbacks struct {
	OnPress   func(x, y int)
	OnMove    func(x, y int)
	OnRelease func(x, y int)
}

// Options 驱动参数；零值字段取默认值
type Options struct {
	// MoveThreshold 防抖阈值（像素）；任一轴位移超过该值才上报移动
	MoveThreshold int
	// TouchInterval 接触中的轮询周期（约 30fps）
	TouchInterval time.Duration
	// IdleInterval 空闲轮询周期；更短以便快速响应下一次按下
	IdleInterval time.Duration
	// StopTimeout Stop 等待轮询协程退出的上限
	StopTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.MoveThreshold <= 0 {
		o.MoveThreshold = 2
	}
	if o.TouchInterval <= 0 {
		o.TouchInterval = 30 * time.Millisecond
	}
	if o.IdleInterval <= 0 {
		o.IdleInterval = 10 * time.Millisecond
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = time.Second
	}
}

// Driver 后台触摸驱动：独占数据源，在单个协程里轮询、
// 去抖并派发手势回调。最近一次位置通过互斥锁共享给渲染循环。
type Driver struct {
	src PositionSource
	cbs Callbacks
	opt Options

	// mu 保护 last/touching/state（轮询协程写，任意协程读）
	mu       sync.Mutex
	last     Point
	touching bool
	state    GestureState

	// runMu 保护启停状态
	runMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewDriver 创建驱动；不会自动启动
func NewDriver(src PositionSource, cbs Callbacks, opt Options) *Driver {
	opt.applyDefaults()
	return &Driver{src: src, cbs: cbs, opt: opt}
}

// Start 启动轮询协程；重复调用是空操作
func (d *Driver) Start() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	if d.running {
		return
	}
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.running = true
	go d.pollLoop()
}

// Stop 通知轮询协程退出并等待，超时只记录诊断不报错。
// 未启动或已停止时调用都是安全的空操作。
// 停止时进行中的手势不会补发 release。
func (d *Driver) Stop() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	if !d.running {
		return
	}
	close(d.stopCh)
	select {
	case <-d.doneCh:
	case <-time.After(d.opt.StopTimeout):
		logger.Warn("触摸轮询协程 %v 内未退出，放弃等待", d.opt.StopTimeout)
	}
	d.running = false
}

// LastTouch 最近一次已提交的位置快照；无接触时 ok 为 false。
// 不会阻塞在轮询协程上。
func (d *Driver) LastTouch() (Point, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.touching
}

// State 当前手势状态快照
func (d *Driver) State() GestureState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Driver) pollLoop() {
	defer close(d.doneCh)

	var last Point
	hasLast := false      // 本手势内是否已有提交位置
	pressNotified := false // 保证每个手势 on_press 只触发一次

	for {
		select {
		case <-d.stopCh:
			return
		default:
		}

		if d.src.Pressed() {
			if p, ok := d.src.Sample(); ok {
				// 防抖：位移不超过阈值的读数全部合并丢弃
				if !hasLast || abs(p.X-last.X) > d.opt.MoveThreshold || abs(p.Y-last.Y) > d.opt.MoveThreshold {
					d.mu.Lock()
					d.last = p
					d.touching = true
					if pressNotified {
						d.state = StateMoving
					} else {
						d.state = StatePressed
					}
					d.mu.Unlock()

					if pressNotified {
						d.safeCall(d.cbs.OnMove, p)
					} else {
						d.safeCall(d.cbs.OnPress, p)
						pressNotified = true
					}
					last = p
					hasLast = true
				}
			}
			// 无效读数不结束手势，只丢弃本次采样
			d.sleep(d.opt.TouchInterval)
		} else {
			if hasLast {
				// release 使用最后一次提交的位置
				d.safeCall(d.cbs.OnRelease, last)
				d.mu.Lock()
				d.touching = false
				d.state = StateIdle
				d.mu.Unlock()
				hasLast = false
				pressNotified = false
			}
			d.sleep(d.opt.IdleInterval)
		}
	}
}

// safeCall 回调故障隔离：屏幕侧的 panic 不能杀死轮询协程
func (d *Driver) safeCall(cb func(x, y int), p Point) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("触摸回调 panic: %v", r)
		}
	}()
	cb(p.X, p.Y)
}

// sleep 可被 Stop 打断的休眠
func (d *Driver) sleep(dur time.Duration) {
	select {
	case <-d.stopCh:
	case <-time.After(dur):
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
