package robot

import (
	"fmt"
	"strings"

	"rubik-device/internal/logger"
)

// FaceRotator 执行单个机器人记号的机构抽象（Servos 的生产实现）
type FaceRotator interface {
	RotateFace(face string, turns int, clockwise bool) error
}

// ProgressFunc 逐步执行回调
// status 取值: "executing", "completed", "finished", "stopped", "failed"
type ProgressFunc func(current, total int, move, next, status string)

// 把指定面转到底部所需的整体旋转
var faceRotations = map[string]string{
	"D": "",   // 已在底部
	"U": "x2", // 顶 → 底
	"F": "x'", // 前 → 底
	"B": "x",  // 后 → 底
	"R": "z",  // 右 → 底
	"L": "z'", // 左 → 底
}

// 整体旋转的逆
var inverseRotations = map[string]string{
	"x":  "x'",
	"x'": "x",
	"x2": "x2",
	"z":  "z'",
	"z'": "z",
}

// ConvertToRobotSingmaster 把标准 Singmaster 解法转换为机器人可执行序列。
// 机器人只能转底面（D/D'/D2），其余面先用整体旋转
// （x/x'/x2/z/z'）把目标面转到底部，转完再转回来。
//
//	"U"  → "x2 D x2"
//	"R2" → "z D2 z'"
//	"D"  → "D"
func ConvertToRobotSingmaster(solution string) (string, error) {
	var out []string
	for _, move := range strings.Fields(solution) {
		face := move[:1]
		suffix := move[1:]

		rot, ok := faceRotations[face]
		if !ok {
			return "", fmt.Errorf("无效的 Singmaster 记号: %q", move)
		}
		if suffix != "" && suffix != "2" && suffix != "'" {
			return "", fmt.Errorf("无效的记号后缀: %q", move)
		}

		if rot != "" {
			out = append(out, rot)
		}
		switch suffix {
		case "2":
			out = append(out, "D2")
		case "'":
			out = append(out, "D'")
		default:
			out = append(out, "D")
		}
		if rot != "" {
			out = append(out, inverseRotations[rot])
		}
	}
	return strings.Join(out, " "), nil
}

// ExecuteSolution 执行一段标准 Singmaster 解法。
// 每步之间检查 stop 通道实现急停；回调顺序为
// executing → completed（逐步），结尾 finished 或 stopped。
// 返回是否完整执行。
func ExecuteSolution(r FaceRotator, solution string, cb ProgressFunc, stop <-chan struct{}) (bool, error) {
	converted, err := ConvertToRobotSingmaster(solution)
	if err != nil {
		return false, err
	}
	logger.Info("机器人执行序列: %s", converted)

	moves := strings.Fields(converted)
	total := len(moves)

	for i, move := range moves {
		if stopped(stop) {
			if cb != nil {
				cb(i, total, move, "", "stopped")
			}
			logger.Warn("急停：序列在第 %d/%d 步中断", i, total)
			return false, nil
		}

		next := ""
		if i+1 < total {
			next = moves[i+1]
		}
		if cb != nil {
			cb(i+1, total, move, next, "executing")
		}

		if err := executeMove(r, move); err != nil {
			if cb != nil {
				cb(i+1, total, move, next, "failed")
			}
			return false, fmt.Errorf("第 %d/%d 步 %q 执行失败: %w", i+1, total, move, err)
		}

		if cb != nil {
			cb(i+1, total, move, next, "completed")
		}
	}

	if cb != nil {
		cb(total, total, "", "", "finished")
	}
	logger.Info("序列执行完成，共 %d 步", total)
	return true, nil
}

// executeMove 解析单个记号并下发机构
func executeMove(r FaceRotator, move string) error {
	face := move[:1]
	suffix := move[1:]

	switch suffix {
	case "":
		return r.RotateFace(face, 1, true)
	case "2":
		return r.RotateFace(face, 2, true)
	case "'":
		return r.RotateFace(face, 1, false)
	default:
		return fmt.Errorf("无效记号: %q", move)
	}
}

func stopped(stop <-chan struct{}) bool {
	if stop == nil {
		return false
	}
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
