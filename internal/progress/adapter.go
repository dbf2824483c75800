package progress

import (
	"fmt"
	"strings"
)

// State 小屏幕可显示的最小进度状态：两行文字 + 百分比
type State struct {
	Line1 string  `json:"line1"`
	Line2 string  `json:"line2"`
	Pct   float64 `json:"pct"` // 0..1

	// 调试附加信息
	Step   string `json:"step,omitempty"`
	Event  string `json:"event,omitempty"`
	Status string `json:"status,omitempty"`
}

// DefaultState 空闲状态
func DefaultState() State {
	return State{Line1: "Ready"}
}

// Adapter 把流水线事件转换为屏幕状态
type Adapter struct {
	last State
}

// NewAdapter 创建适配器
func NewAdapter() *Adapter {
	return &Adapter{last: DefaultState()}
}

// normPct 归一化百分比：>1 视为百分制，最终钳制到 0..1
func normPct(pct float64) float64 {
	if pct > 1.0 {
		pct = pct / 100.0
	}
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

// shorten 按字符数截断，超长加省略号
func shorten(s string, n int) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// OnEvent 消费一个事件并返回最新屏幕状态
func (a *Adapter) OnEvent(ev Event) State {
	pct := normPct(ev.Pct)
	msg := ev.Msg
	if msg == "" {
		msg = ev.Status
	}

	line1 := strings.TrimSpace(fmt.Sprintf("%3d%% %s", int(pct*100), ev.Step))
	if line1 == "" {
		line1 = "Working…"
	}

	st := State{
		Line1:  line1,
		Line2:  shorten(msg, 30),
		Pct:    pct,
		Step:   ev.Step,
		Event:  ev.Name,
		Status: ev.Status,
	}
	a.last = st
	return st
}

// Last 最近一次转换结果
func (a *Adapter) Last() State {
	return a.last
}
