package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rubik-device/internal/logger"
)

// 仅在控制台显示的关键事件
var majorEvents = map[string]struct{}{
	"pipeline_started": {},
	"pipeline_done":    {},

	"conversion_started":   {},
	"conversion_completed": {},
	"conversion_failed":    {},

	"solving_started":   {},
	"solving_completed": {},
	"solving_failed":    {},
	"already_solved":    {},

	"execute_move":       {},
	"execution_finished": {},
	"execution_stopped":  {},
	"execution_failed":   {},

	"error": {},
}

// ConsoleListener 关键事件打到控制台（调试时人眼可读）
func ConsoleListener() Listener {
	return func(ev Event) {
		if _, ok := majorEvents[ev.Name]; !ok {
			return
		}
		pctTxt := "  -- "
		if ev.Pct >= 0 && ev.Pct <= 1 {
			pctTxt = fmt.Sprintf("%5.1f%%", ev.Pct*100)
		}
		fmt.Printf("[%s] %-20s %s\n", pctTxt, ev.Name, ev.Msg)
	}
}

// JSONLFileListener 把全部事件按行写入 JSONL 文件（事后回放分析）
// 每次运行新建文件；返回监听器、文件路径和关闭函数。
func JSONLFileListener(folder, prefix string) (Listener, string, func(), error) {
	if folder == "" {
		folder = filepath.Join(os.TempDir(), "rubik")
	}
	if prefix == "" {
		prefix = "debug_progress"
	}
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, "", nil, err
	}
	path := filepath.Join(folder, fmt.Sprintf("%s_%s.jsonl", prefix, time.Now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return nil, "", nil, err
	}

	l := func(ev Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		f.Write(data)
		f.Write([]byte{'\n'})
		f.Sync()
	}
	closeFn := func() { f.Close() }
	return l, path, closeFn, nil
}

// MultiListener 扇出到多个监听器；单个失败不影响其余
func MultiListener(listeners ...Listener) Listener {
	return func(ev Event) {
		for _, l := range listeners {
			if l == nil {
				continue
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Warn("进度监听器 panic: %v", r)
					}
				}()
				l(ev)
			}()
		}
	}
}
