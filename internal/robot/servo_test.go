package robot

import (
	"sync"
	"testing"

	"rubik-device/config"
)

// fakePulseWriter 记录下发的脉宽序列
type fakePulseWriter struct {
	mu     sync.Mutex
	pulses []pulse
}

type pulse struct {
	gpio int
	pw   int
}

func (f *fakePulseWriter) SetServoPulsewidth(gpio, pw int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulses = append(f.pulses, pulse{gpio: gpio, pw: pw})
	return nil
}

func (f *fakePulseWriter) Close() error { return nil }

func (f *fakePulseWriter) last() pulse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pulses) == 0 {
		return pulse{}
	}
	return f.pulses[len(f.pulses)-1]
}

func (f *fakePulseWriter) all() []pulse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pulse(nil), f.pulses...)
}

// 测试配置：脉宽取默认标定值，等待全部归零加速测试
func testServoConfig() config.ServoConfig {
	cfg := config.DefaultConfig().Servo
	cfg.WaitFreeMs = 0
	cfg.WaitRotateMs = 0
	cfg.CoverCloseMs = 0
	cfg.CoverSettleMs = 0
	cfg.RotateHoldMs = 0
	cfg.SpinSettleMs = 0
	cfg.SlowStepDelayMs = 0
	return cfg
}

func TestSpinOutRight(t *testing.T) {
	fake := &fakePulseWriter{}
	cfg := testServoConfig()
	s := NewServos(fake, cfg)

	if err := s.SpinOut(DirRight, false); err != nil {
		t.Fatal(err)
	}

	want := cfg.PulseRight + cfg.TrimRight
	if got := fake.last(); got.gpio != cfg.BottomPin || got.pw != want {
		t.Fatalf("脉宽错误: %+v, 期望 gpio=%d pw=%d", got, cfg.BottomPin, want)
	}
	if _, cube := s.Positions(); cube != CubeRight {
		t.Fatalf("转盘状态错误: %s", cube)
	}
}

func TestSpinOutLeftAppliesTrim(t *testing.T) {
	fake := &fakePulseWriter{}
	cfg := testServoConfig()
	s := NewServos(fake, cfg)

	if err := s.SpinOut(DirLeft, false); err != nil {
		t.Fatal(err)
	}
	want := cfg.PulseLeft + cfg.TrimLeft
	if got := fake.last(); got.pw != want {
		t.Fatalf("左侧微调未生效: pw=%d 期望 %d", got.pw, want)
	}
}

func TestSpinOutUnknownDirection(t *testing.T) {
	s := NewServos(&fakePulseWriter{}, testServoConfig())
	if err := s.SpinOut(Direction("X"), true); err == nil {
		t.Fatal("未知方向应返回错误")
	}
}

func TestFlipCloseMicroRelease(t *testing.T) {
	fake := &fakePulseWriter{}
	cfg := testServoConfig()
	s := NewServos(fake, cfg)

	if err := s.FlipClose(); err != nil {
		t.Fatal(err)
	}

	pulses := fake.all()
	if len(pulses) != 2 {
		t.Fatalf("脉宽条数错误: %d", len(pulses))
	}
	// 先压到关位，再微回松
	if pulses[0].pw != cfg.PulseClose || pulses[0].gpio != cfg.TopPin {
		t.Fatalf("关盖脉宽错误: %+v", pulses[0])
	}
	if pulses[1].pw != cfg.PulseClose-cfg.CoverRelease {
		t.Fatalf("微回松脉宽错误: %+v", pulses[1])
	}
	if cover, _ := s.Positions(); cover != CoverClose {
		t.Fatalf("盖板状态错误: %s", cover)
	}
}

func TestSpinMidConstrainedLoosePath(t *testing.T) {
	fake := &fakePulseWriter{}
	cfg := testServoConfig()
	s := NewServos(fake, cfg)

	if err := s.SpinOut(DirRight, false); err != nil {
		t.Fatal(err)
	}
	n := len(fake.all())

	if err := s.SpinMid(true); err != nil {
		t.Fatal(err)
	}

	pulses := fake.all()[n:]
	if len(pulses) != 2 {
		t.Fatalf("受约束回中应走两段: %d", len(pulses))
	}
	// 右侧回中：先松弛位 MID-20，再落到 MID+微调
	if pulses[0].pw != cfg.PulseMid-20 {
		t.Fatalf("松弛位错误: %d", pulses[0].pw)
	}
	if pulses[1].pw != cfg.PulseMid+cfg.TrimMidConstrained {
		t.Fatalf("终点微调错误: %d", pulses[1].pw)
	}
	if _, cube := s.Positions(); cube != CubeMid {
		t.Fatalf("转盘状态错误: %s", cube)
	}
}

func TestRotateFaceUnknownToken(t *testing.T) {
	s := NewServos(&fakePulseWriter{}, testServoConfig())
	if err := s.RotateFace("y", 1, true); err == nil {
		t.Fatal("不支持的记号应返回错误")
	}
}

func TestOffStopsBothServos(t *testing.T) {
	fake := &fakePulseWriter{}
	cfg := testServoConfig()
	s := NewServos(fake, cfg)

	s.Off()

	pulses := fake.all()
	if len(pulses) != 2 || pulses[0].pw != 0 || pulses[1].pw != 0 {
		t.Fatalf("停止输出错误: %+v", pulses)
	}
	if pulses[0].gpio != cfg.BottomPin || pulses[1].gpio != cfg.TopPin {
		t.Fatalf("引脚错误: %+v", pulses)
	}
}
