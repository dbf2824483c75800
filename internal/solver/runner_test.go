package solver

import (
	"sync"
	"testing"
	"time"

	"rubik-device/internal/progress"
)

// slowRotator 每步可控耗时，便于测试运行中状态与急停
type slowRotator struct {
	delay time.Duration
	mu    sync.Mutex
	count int
}

func (s *slowRotator) RotateFace(face string, turns int, clockwise bool) error {
	time.Sleep(s.delay)
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	return nil
}

func (s *slowRotator) executed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

type eventSink struct {
	mu     sync.Mutex
	events []progress.Event
}

func (s *eventSink) listener() progress.Listener {
	return func(ev progress.Event) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.events = append(s.events, ev)
	}
}

func (s *eventSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Name
	}
	return out
}

func waitDone(t *testing.T, r *Runner) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !r.Running() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("执行未在限期内结束")
}

func TestRunnerLifecycle(t *testing.T) {
	rot := &slowRotator{}
	sink := &eventSink{}
	r := NewRunner(rot, sink.listener())

	if err := r.Start("D"); err != nil {
		t.Fatal(err)
	}
	waitDone(t, r)

	names := sink.names()
	if len(names) < 3 {
		t.Fatalf("事件过少: %v", names)
	}
	if names[0] != "pipeline_started" {
		t.Fatalf("首事件错误: %v", names)
	}
	if names[len(names)-1] != "pipeline_done" {
		t.Fatalf("尾事件错误: %v", names)
	}
	if rot.executed() != 1 {
		t.Fatalf("执行步数错误: %d", rot.executed())
	}
}

func TestRunnerRejectsConcurrentStart(t *testing.T) {
	rot := &slowRotator{delay: 50 * time.Millisecond}
	r := NewRunner(rot, nil)

	if err := r.Start("U R2 F"); err != nil {
		t.Fatal(err)
	}
	if err := r.Start("D"); err == nil {
		t.Fatal("执行中重复启动应报错")
	}
	waitDone(t, r)

	// 执行结束后可再次启动
	if err := r.Start("D"); err != nil {
		t.Fatal(err)
	}
	waitDone(t, r)
}

func TestRunnerStop(t *testing.T) {
	rot := &slowRotator{delay: 30 * time.Millisecond}
	sink := &eventSink{}
	r := NewRunner(rot, sink.listener())

	// "U" 转换后 3 步，每步 30ms；第一步内请求急停
	if err := r.Start("U"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	r.Stop()
	r.Stop() // 重复急停安全
	waitDone(t, r)

	if rot.executed() >= 3 {
		t.Fatalf("急停未生效: 执行了 %d 步", rot.executed())
	}

	names := sink.names()
	sawStopped := false
	for _, n := range names {
		if n == "execution_stopped" {
			sawStopped = true
		}
	}
	if !sawStopped {
		t.Fatalf("缺少 execution_stopped 事件: %v", names)
	}
	if last := names[len(names)-1]; last != "pipeline_done" {
		t.Fatalf("尾事件错误: %v", names)
	}
}

func TestRunnerStopWhenIdle(t *testing.T) {
	r := NewRunner(&slowRotator{}, nil)
	r.Stop()
	r.Stop()
}

func TestRunnerInvalidSolution(t *testing.T) {
	sink := &eventSink{}
	r := NewRunner(&slowRotator{}, sink.listener())

	if err := r.Start("W Q"); err != nil {
		t.Fatal("输入校验在执行协程里完成，Start 本身不报错")
	}
	waitDone(t, r)

	names := sink.names()
	sawFailed := false
	for _, n := range names {
		if n == "execution_failed" {
			sawFailed = true
		}
	}
	if !sawFailed {
		t.Fatalf("缺少 execution_failed 事件: %v", names)
	}
}
