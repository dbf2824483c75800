package touch

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// PositionSource 轮询驱动的数据源；硬件采样器与测试替身都实现它
type PositionSource interface {
	// Pressed 报告触点检测线（IRQ，低有效）当前是否有接触
	Pressed() bool
	// Sample 读取一次校准后的坐标；读数无效时返回 false
	Sample() (Point, bool)
}

// Pins XPT2046 的 GPIO 接线（periph gpioreg 引脚名）
type Pins struct {
	IRQ  string
	CS   string
	CLK  string
	MOSI string
	MISO string
}

// XPT2046 转换命令（12bit 差分模式）
const (
	cmdReadX = 0x90
	cmdReadY = 0xD0
)

// 位带 SPI 时钟半周期；XPT2046 最高 2.5MHz，这里远低于上限
const bitDelay = 10 * time.Microsecond

// Sampler 通过位带 SPI 读取 XPT2046 的采样器。
// 所有总线访问都由触摸驱动的单个轮询协程发起，因此内部不加锁。
type Sampler struct {
	cal Calibration

	irq  gpio.PinIO
	cs   gpio.PinIO
	clk  gpio.PinIO
	mosi gpio.PinIO
	miso gpio.PinIO
}

// NewSampler 配置触摸引脚。初始化失败视为硬件不可用，直接向上返回错误。
func NewSampler(pins Pins, cal Calibration) (*Sampler, error) {
	s := &Sampler{cal: cal}

	byName := func(name string) (gpio.PinIO, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("GPIO 引脚不存在: %s", name)
		}
		return p, nil
	}

	var err error
	if s.irq, err = byName(pins.IRQ); err != nil {
		return nil, err
	}
	if s.cs, err = byName(pins.CS); err != nil {
		return nil, err
	}
	if s.clk, err = byName(pins.CLK); err != nil {
		return nil, err
	}
	if s.mosi, err = byName(pins.MOSI); err != nil {
		return nil, err
	}
	if s.miso, err = byName(pins.MISO); err != nil {
		return nil, err
	}

	if err := s.irq.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("配置 IRQ 失败: %w", err)
	}
	if err := s.miso.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("配置 MISO 失败: %w", err)
	}
	if err := s.cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("配置 CS 失败: %w", err)
	}
	if err := s.clk.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("配置 CLK 失败: %w", err)
	}
	if err := s.mosi.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("配置 MOSI 失败: %w", err)
	}

	return s, nil
}

// Pressed 触点检测线低电平表示有接触
func (s *Sampler) Pressed() bool {
	return s.irq.Read() == gpio.Low
}

// Sample 读取一次坐标。片选在所有退出路径上都会释放。
func (s *Sampler) Sample() (Point, bool) {
	_ = s.cs.Out(gpio.Low)
	defer func() { _ = s.cs.Out(gpio.High) }()
	time.Sleep(100 * time.Microsecond)

	xRaw := s.readChannel(cmdReadX)
	yRaw := s.readChannel(cmdReadY)

	if !s.cal.ValidRaw(xRaw, yRaw) {
		return Point{}, false
	}
	return s.cal.Map(xRaw, yRaw), true
}

// readChannel 发送转换命令并取回 12bit 结果
func (s *Sampler) readChannel(cmd byte) int {
	rx := s.exchange([]byte{cmd, 0, 0})
	return int(uint16(rx[1])<<8|uint16(rx[2])) >> 3
}

// exchange 位带 SPI 全双工传输（mode 0）
func (s *Sampler) exchange(tx []byte) []byte {
	rx := make([]byte, len(tx))
	for i, b := range tx {
		var recv byte
		for bit := 0; bit < 8; bit++ {
			if b&0x80 != 0 {
				_ = s.mosi.Out(gpio.High)
			} else {
				_ = s.mosi.Out(gpio.Low)
			}
			b <<= 1
			time.Sleep(bitDelay)
			_ = s.clk.Out(gpio.High)
			time.Sleep(bitDelay)
			recv <<= 1
			if s.miso.Read() == gpio.High {
				recv |= 1
			}
			_ = s.clk.Out(gpio.Low)
			time.Sleep(bitDelay)
		}
		rx[i] = recv
	}
	return rx
}
