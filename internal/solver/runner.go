package solver

import (
	"fmt"
	"sync"

	"rubik-device/internal/logger"
	"rubik-device/internal/progress"
	"rubik-device/internal/robot"
)

// Runner 在后台协程执行一段解法，并把逐步进度翻译成事件流。
// 同一时刻只允许一次执行；Stop 在步与步之间生效（急停）。
type Runner struct {
	rotator  robot.FaceRotator
	listener progress.Listener

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewRunner 创建执行器
func NewRunner(rotator robot.FaceRotator, listener progress.Listener) *Runner {
	return &Runner{rotator: rotator, listener: listener}
}

// Running 是否有解法正在执行
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start 启动执行；已有执行在跑时返回错误
func (r *Runner) Start(solution string) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("已有解法正在执行")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	stop := r.stopCh
	r.mu.Unlock()

	go r.run(solution, stop)
	return nil
}

// Stop 请求急停；未在执行时是空操作
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || r.stopCh == nil {
		return
	}
	select {
	case <-r.stopCh:
		// 已请求过
	default:
		close(r.stopCh)
	}
}

func (r *Runner) run(solution string, stop <-chan struct{}) {
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	progress.Emit(r.listener, progress.Event{
		Name: "pipeline_started",
		Pct:  0,
		Step: "execute",
		Msg:  fmt.Sprintf("Solution: %s", solution),
	})

	cb := func(current, total int, move, next, status string) {
		pct := 0.0
		if total > 0 {
			pct = float64(current) / float64(total)
		}
		ev := progress.Event{
			Pct:     pct,
			Step:    "execute",
			Status:  status,
			Move:    move,
			Next:    next,
			Current: current,
			Total:   total,
		}
		switch status {
		case "executing", "completed":
			ev.Name = "execute_move"
			ev.Msg = fmt.Sprintf("Executing %s (%d/%d)", move, current, total)
		case "finished":
			ev.Name = "execution_finished"
			ev.Msg = "Done"
		case "stopped":
			ev.Name = "execution_stopped"
			ev.Msg = "Stopped"
		default:
			ev.Name = "execution_failed"
			ev.Msg = "Failed"
		}
		progress.Emit(r.listener, ev)
	}

	done, err := robot.ExecuteSolution(r.rotator, solution, cb, stop)
	if err != nil {
		logger.Error("解法执行失败: %v", err)
		progress.Emit(r.listener, progress.Event{
			Name:   "execution_failed",
			Pct:    -1,
			Step:   "execute",
			Status: "failed",
			Msg:    err.Error(),
		})
		return
	}

	status := "finished"
	if !done {
		status = "stopped"
	}
	progress.Emit(r.listener, progress.Event{
		Name:   "pipeline_done",
		Pct:    1,
		Step:   "execute",
		Status: status,
	})
}
