package touch

import (
	"sync"
	"testing"
	"time"
)

// fakeSource 可编程触摸源：测试协程设置状态，轮询协程读取
type fakeSource struct {
	mu      sync.Mutex
	pressed bool
	point   Point
	valid   bool
}

func (f *fakeSource) set(pressed bool, p Point, valid bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pressed = pressed
	f.point = p
	f.valid = valid
}

func (f *fakeSource) Pressed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pressed
}

func (f *fakeSource) Sample() (Point, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.point, f.valid
}

// recorder 线程安全地记录回调序列
type recorder struct {
	mu     sync.Mutex
	events []string
	points []Point
}

func (r *recorder) add(kind string, x, y int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind)
	r.points = append(r.points, Point{X: x, Y: y})
}

func (r *recorder) snapshot() ([]string, []Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...), append([]Point(nil), r.points...)
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnPress:   func(x, y int) { r.add("press", x, y) },
		OnMove:    func(x, y int) { r.add("move", x, y) },
		OnRelease: func(x, y int) { r.add("release", x, y) },
	}
}

func testOptions() Options {
	return Options{
		MoveThreshold: 2,
		TouchInterval: time.Millisecond,
		IdleInterval:  time.Millisecond,
		StopTimeout:   time.Second,
	}
}

// waitFor 轮询等待条件成立，避免测试依赖固定休眠
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("等待条件超时")
}

func TestPressReleaseOnce(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	d := NewDriver(src, rec.callbacks(), testOptions())
	d.Start()
	defer d.Stop()

	src.set(true, Point{X: 100, Y: 80}, true)
	waitFor(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) >= 1
	})

	// 持续按住同一位置一段时间：press 只能触发一次
	time.Sleep(20 * time.Millisecond)

	src.set(false, Point{}, false)
	waitFor(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) >= 2
	})

	evs, pts := rec.snapshot()
	if len(evs) != 2 || evs[0] != "press" || evs[1] != "release" {
		t.Fatalf("事件序列错误: %v", evs)
	}
	if pts[0] != (Point{X: 100, Y: 80}) || pts[1] != (Point{X: 100, Y: 80}) {
		t.Fatalf("坐标错误: %v", pts)
	}
}

func TestSubThresholdCoalesced(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	d := NewDriver(src, rec.callbacks(), testOptions())
	d.Start()
	defer d.Stop()

	src.set(true, Point{X: 50, Y: 50}, true)
	waitFor(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) >= 1
	})

	// 阈值内的抖动不产生 move
	src.set(true, Point{X: 51, Y: 51}, true)
	time.Sleep(15 * time.Millisecond)
	src.set(true, Point{X: 52, Y: 49}, true)
	time.Sleep(15 * time.Millisecond)

	src.set(false, Point{}, false)
	waitFor(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) >= 2
	})

	evs, pts := rec.snapshot()
	if len(evs) != 2 || evs[0] != "press" || evs[1] != "release" {
		t.Fatalf("抖动未被合并: %v", evs)
	}
	// release 回报最后一次提交的位置，而非抖动读数
	if pts[1] != (Point{X: 50, Y: 50}) {
		t.Fatalf("release 位置错误: %v", pts[1])
	}
}

func TestMoveBeyondThreshold(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	d := NewDriver(src, rec.callbacks(), testOptions())
	d.Start()
	defer d.Stop()

	src.set(true, Point{X: 10, Y: 10}, true)
	waitFor(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) >= 1
	})

	src.set(true, Point{X: 20, Y: 10}, true)
	waitFor(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) >= 2
	})

	src.set(false, Point{}, false)
	waitFor(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) >= 3
	})

	evs, pts := rec.snapshot()
	if evs[0] != "press" || evs[1] != "move" || evs[len(evs)-1] != "release" {
		t.Fatalf("事件序列错误: %v", evs)
	}
	// release 位置是最后提交的移动位置
	if pts[len(pts)-1] != (Point{X: 20, Y: 10}) {
		t.Fatalf("release 位置错误: %v", pts[len(pts)-1])
	}
}

func TestInvalidSampleKeepsGesture(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	d := NewDriver(src, rec.callbacks(), testOptions())
	d.Start()
	defer d.Stop()

	src.set(true, Point{X: 30, Y: 30}, true)
	waitFor(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) >= 1
	})

	// IRQ 仍为按下但读数无效：手势不结束，也不产生事件
	src.set(true, Point{}, false)
	time.Sleep(15 * time.Millisecond)

	if st := d.State(); st == StateIdle {
		t.Fatal("无效读数不应结束手势")
	}

	src.set(false, Point{}, false)
	waitFor(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) >= 2
	})

	evs, _ := rec.snapshot()
	if len(evs) != 2 || evs[1] != "release" {
		t.Fatalf("事件序列错误: %v", evs)
	}
}

func TestStopNeverStarted(t *testing.T) {
	d := NewDriver(&fakeSource{}, Callbacks{}, testOptions())
	// 未启动时重复 Stop 必须安全
	d.Stop()
	d.Stop()
}

func TestStartStopIdempotent(t *testing.T) {
	src := &fakeSource{}
	d := NewDriver(src, Callbacks{}, testOptions())
	d.Start()
	d.Start()
	d.Stop()
	d.Stop()

	// 停止后可重新启动
	d.Start()
	d.Stop()
}

func TestCallbackPanicIsolated(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	cbs := rec.callbacks()
	cbs.OnPress = func(x, y int) { panic("屏幕侧故障") }
	d := NewDriver(src, cbs, testOptions())
	d.Start()
	defer d.Stop()

	src.set(true, Point{X: 5, Y: 5}, true)
	waitFor(t, func() bool { return d.State() != StateIdle })

	// 轮询协程存活：松开后仍能派发 release
	src.set(false, Point{}, false)
	waitFor(t, func() bool {
		evs, _ := rec.snapshot()
		return len(evs) >= 1 && evs[len(evs)-1] == "release"
	})
}

func TestLastTouchSnapshot(t *testing.T) {
	src := &fakeSource{}
	d := NewDriver(src, Callbacks{}, testOptions())
	d.Start()
	defer d.Stop()

	if _, ok := d.LastTouch(); ok {
		t.Fatal("初始状态不应有触摸位置")
	}

	src.set(true, Point{X: 77, Y: 66}, true)
	waitFor(t, func() bool {
		_, ok := d.LastTouch()
		return ok
	})
	p, _ := d.LastTouch()
	if p != (Point{X: 77, Y: 66}) {
		t.Fatalf("位置快照错误: %v", p)
	}

	src.set(false, Point{}, false)
	waitFor(t, func() bool {
		_, ok := d.LastTouch()
		return !ok
	})
}
