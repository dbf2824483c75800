package robot

import (
	"fmt"
	"sync"
	"time"

	"rubik-device/config"
	"rubik-device/internal/logger"
)

// Direction 转盘旋转方向
type Direction string

const (
	// DirRight 顺时针（俯视）
	DirRight Direction = "D"
	// DirLeft 逆时针
	DirLeft Direction = "G"
)

// 盖板/魔方位置状态
const (
	CoverOpen  = "open"
	CoverClose = "close"
	CoverFlip  = "flip"

	CubeMid   = "mid"
	CubeRight = "right"
	CubeLeft  = "left"
)

// Servos 双舵机机构：下舵机带动转盘，上舵机控制盖板。
// 盖板开：转盘旋转带动整个魔方；盖板关：盖板压住上两层，
// 转盘只旋转底层（受约束旋转 = Singmaster D 族）。
// 所有动作方法都是同步阻塞的，由执行器在单协程里调用。
type Servos struct {
	pw  PulseWriter
	cfg config.ServoConfig

	mu        sync.Mutex
	coverPos  string
	cubePos   string
	currentPW int // 盖板舵机最近脉宽
}

// NewServos 创建舵机控制器；初始姿态假定盖板开、转盘居中
func NewServos(pw PulseWriter, cfg config.ServoConfig) *Servos {
	return &Servos{
		pw:        pw,
		cfg:       cfg,
		coverPos:  CoverOpen,
		cubePos:   CubeMid,
		currentPW: cfg.PulseOpen,
	}
}

// Positions 当前机构姿态快照 (盖板, 转盘)
func (s *Servos) Positions() (cover, cube string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coverPos, s.cubePos
}

func (s *Servos) setCover(pos string, pw int) {
	s.mu.Lock()
	s.coverPos = pos
	s.currentPW = pw
	s.mu.Unlock()
}

func (s *Servos) setCube(pos string) {
	s.mu.Lock()
	s.cubePos = pos
	s.mu.Unlock()
}

func (s *Servos) coverPW() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPW
}

func (s *Servos) wait(ms int) {
	if ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
}

// moveTo 发送脉宽并等待舵机到位；脉宽在等待期间保持输出，舵机才扛得住负载
func (s *Servos) moveTo(pulseWidth, servo, waitMs int) error {
	if err := s.pw.SetServoPulsewidth(servo, pulseWidth); err != nil {
		return err
	}
	s.wait(waitMs)
	return nil
}

// moveSlow 微步渐进移动，避免机械冲击
func (s *Servos) moveSlow(fromPW, toPW, servo int) error {
	step := s.cfg.SlowStepMicros
	if step <= 0 {
		step = 10
	}
	delay := s.cfg.SlowStepDelayMs

	if fromPW < toPW {
		for pw := fromPW; pw <= toPW; pw += step {
			if err := s.pw.SetServoPulsewidth(servo, pw); err != nil {
				return err
			}
			s.wait(delay)
		}
	} else {
		for pw := fromPW; pw >= toPW; pw -= step {
			if err := s.pw.SetServoPulsewidth(servo, pw); err != nil {
				return err
			}
			s.wait(delay)
		}
	}
	// 精确落在目标值
	return s.pw.SetServoPulsewidth(servo, toPW)
}

// FlipOpen 打开盖板
func (s *Servos) FlipOpen() error {
	if err := s.moveTo(s.cfg.PulseOpen, s.cfg.TopPin, 500); err != nil {
		return err
	}
	s.setCover(CoverOpen, s.cfg.PulseOpen)
	s.wait(300)
	return nil
}

// FlipClose 关闭盖板，随后微回松释放压力防止剪切卡死
func (s *Servos) FlipClose() error {
	if err := s.moveTo(s.cfg.PulseClose, s.cfg.TopPin, s.cfg.CoverCloseMs); err != nil {
		return err
	}
	released := s.cfg.PulseClose - s.cfg.CoverRelease
	if err := s.moveTo(released, s.cfg.TopPin, 150); err != nil {
		return err
	}
	s.setCover(CoverClose, released)
	return nil
}

// FlipUp 盖板下压使魔方向后翻转 90°（Singmaster x 旋转），随后回到开位
func (s *Servos) FlipUp() error {
	if err := s.moveSlow(s.coverPW(), s.cfg.PulseFlip, s.cfg.TopPin); err != nil {
		return err
	}
	s.setCover(CoverFlip, s.cfg.PulseFlip)

	// 等魔方翻落到位后再抬起盖板
	s.wait(500)

	if err := s.moveSlow(s.cfg.PulseFlip, s.cfg.PulseOpen, s.cfg.TopPin); err != nil {
		return err
	}
	s.setCover(CoverOpen, s.cfg.PulseOpen)
	s.wait(300)
	return nil
}

// SpinOut 转盘转到一侧。rotate=false 自由旋转（整体转魔方），
// rotate=true 受约束旋转（盖板压住上层，只转底层）。
func (s *Servos) SpinOut(dir Direction, rotate bool) error {
	cover, _ := s.Positions()
	if !rotate && cover != CoverOpen {
		if err := s.FlipOpen(); err != nil {
			return err
		}
	}

	waitMs := s.cfg.WaitFreeMs
	if rotate {
		waitMs = s.cfg.WaitRotateMs
	}

	switch dir {
	case DirRight:
		target := s.cfg.PulseRight + s.cfg.TrimRight
		if err := s.moveTo(target, s.cfg.BottomPin, waitMs); err != nil {
			return err
		}
		s.setCube(CubeRight)
	case DirLeft:
		target := s.cfg.PulseLeft + s.cfg.TrimLeft
		if err := s.moveTo(target, s.cfg.BottomPin, waitMs); err != nil {
			return err
		}
		s.setCube(CubeLeft)
	default:
		return fmt.Errorf("未知旋转方向: %q", dir)
	}
	s.wait(s.cfg.SpinSettleMs)
	return nil
}

// SpinMid 转盘回中。受约束回中先走松弛位再落到微调中点，
// 减小盖板压力下的回弹。
func (s *Servos) SpinMid(rotate bool) error {
	if rotate {
		_, cube := s.Positions()
		switch cube {
		case CubeRight:
			if err := s.moveTo(s.cfg.PulseMid-20, s.cfg.BottomPin, 600); err != nil {
				return err
			}
		case CubeLeft:
			if err := s.moveTo(s.cfg.PulseMid+20, s.cfg.BottomPin, 500); err != nil {
				return err
			}
		}
		if err := s.moveTo(s.cfg.PulseMid+s.cfg.TrimMidConstrained, s.cfg.BottomPin, 600); err != nil {
			return err
		}
	} else {
		if err := s.moveTo(s.cfg.PulseMid, s.cfg.BottomPin, 600); err != nil {
			return err
		}
	}
	s.setCube(CubeMid)
	s.wait(s.cfg.SpinSettleMs)
	return nil
}

// RotateOut 受约束旋转：关盖锁住上层后底层转到一侧，保持后开盖
func (s *Servos) RotateOut(dir Direction) error {
	cover, _ := s.Positions()
	if cover != CoverClose {
		if err := s.FlipClose(); err != nil {
			return err
		}
		s.wait(s.cfg.CoverSettleMs)
	}
	if err := s.SpinOut(dir, true); err != nil {
		return err
	}
	s.wait(s.cfg.RotateHoldMs)
	return s.FlipOpen()
}

// RotateMid 受约束回中
func (s *Servos) RotateMid() error {
	cover, cube := s.Positions()
	if cover != CoverClose {
		if err := s.FlipClose(); err != nil {
			return err
		}
		s.wait(150)
	}
	if cube == CubeRight || cube == CubeLeft {
		if err := s.SpinMid(true); err != nil {
			return err
		}
	}
	s.setCube(CubeMid)
	s.wait(s.cfg.RotateHoldMs)
	return s.FlipOpen()
}

// RotateFace 执行一个已转换的机器人记号。
// 可用记号：D 族（受约束旋转）、x 族（翻转）、z 族（侧转+翻转组合，
// z = y·x·y'，转盘先右转 90° 再翻转再回中）。
func (s *Servos) RotateFace(face string, turns int, clockwise bool) error {
	switch face {
	case "D":
		dir := DirRight
		if !clockwise {
			dir = DirLeft
		}
		for i := 0; i < turns; i++ {
			if err := s.RotateOut(dir); err != nil {
				return err
			}
			if err := s.RotateMid(); err != nil {
				return err
			}
		}
		return nil

	case "x":
		// 翻转只有一个方向；逆向用补数表示（x' = 翻三次）
		k := turns % 4
		if !clockwise {
			k = (4 - k) % 4
		}
		for i := 0; i < k; i++ {
			if err := s.FlipUp(); err != nil {
				return err
			}
		}
		return nil

	case "z":
		if err := s.SpinOut(DirRight, false); err != nil {
			return err
		}
		k := turns % 4
		if !clockwise {
			k = (4 - k) % 4
		}
		for i := 0; i < k; i++ {
			if err := s.FlipUp(); err != nil {
				return err
			}
		}
		return s.SpinMid(false)

	default:
		return fmt.Errorf("机器人不支持的记号: %q", face)
	}
}

// Off 停止全部脉宽输出（程序退出时调用，舵机断电松弛）
func (s *Servos) Off() {
	if err := s.pw.SetServoPulsewidth(s.cfg.BottomPin, 0); err != nil {
		logger.Warn("停止下舵机失败: %v", err)
	}
	if err := s.pw.SetServoPulsewidth(s.cfg.TopPin, 0); err != nil {
		logger.Warn("停止上舵机失败: %v", err)
	}
}
