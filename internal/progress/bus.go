package progress

import (
	"time"

	"rubik-device/internal/logger"
)

// Event 求解流水线进度事件
// Pct 取值 0..1，负值表示本事件未携带进度。
type Event struct {
	TS      time.Time `json:"ts"`
	Name    string    `json:"event"`
	Pct     float64   `json:"pct"`
	Step    string    `json:"step,omitempty"`
	Msg     string    `json:"msg,omitempty"`
	Status  string    `json:"status,omitempty"`
	Move    string    `json:"move,omitempty"`
	Next    string    `json:"next,omitempty"`
	Current int       `json:"current,omitempty"`
	Total   int       `json:"total,omitempty"`
}

// Listener 进度事件消费者
type Listener func(ev Event)

// Emit 事件发射的唯一入口：补齐时间戳，隔离消费者故障。
// 监听器 panic 只记录告警，流水线继续执行。
func Emit(l Listener, ev Event) {
	if l == nil {
		return
	}
	if ev.TS.IsZero() {
		ev.TS = time.Now()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("进度监听器 panic: %v", r)
		}
	}()
	l(ev)
}
