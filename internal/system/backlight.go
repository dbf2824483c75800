package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Backlight 基于 sysfs 的背光控制器。
// SPI TFT 屏（fbtft overlay）常见两种形态：
//   - 标准 backlight 节点：brightness / max_brightness 可调亮度
//   - 仅 GPIO 开关：max_brightness=1，只能开/关
//
// 两种形态都用百分比接口统一对外。
type Backlight struct {
	BaseDir        string // /sys/class/backlight/<name>
	BrightnessPath string
	MaxPath        string
	PowerPath      string // bl_power，部分驱动提供（0=亮 1=灭）
}

// DiscoverBacklight 探测背光设备；环境变量 RUBIK_BACKLIGHT_DIR 可直接指定节点目录
func DiscoverBacklight() (*Backlight, error) {
	if dir := os.Getenv("RUBIK_BACKLIGHT_DIR"); dir != "" {
		if bl := probeDir(dir); bl != nil {
			return bl, nil
		}
		return nil, fmt.Errorf("指定的背光目录不可用: %s", dir)
	}

	ents, err := filepath.Glob("/sys/class/backlight/*")
	if err != nil || len(ents) == 0 {
		return nil, fmt.Errorf("未检测到背光设备（/sys/class/backlight）")
	}
	for _, d := range ents {
		if bl := probeDir(d); bl != nil {
			return bl, nil
		}
	}
	return nil, fmt.Errorf("未找到可用背光节点（brightness/max_brightness）")
}

func probeDir(dir string) *Backlight {
	bp := filepath.Join(dir, "brightness")
	mp := filepath.Join(dir, "max_brightness")
	if _, err := os.Stat(bp); err != nil {
		return nil
	}
	if _, err := os.Stat(mp); err != nil {
		return nil
	}
	bl := &Backlight{BaseDir: dir, BrightnessPath: bp, MaxPath: mp}
	pp := filepath.Join(dir, "bl_power")
	if _, err := os.Stat(pp); err == nil {
		bl.PowerPath = pp
	}
	return bl
}

func (b *Backlight) Max() (int, error) {
	v, err := readInt(b.MaxPath)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("max_brightness 无效: %d", v)
	}
	return v, nil
}

func (b *Backlight) CurrentRaw() (int, error) {
	return readInt(b.BrightnessPath)
}

// SetPercent 设置亮度百分比（0~100）；纯开关型设备非零即全亮
func (b *Backlight) SetPercent(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	maxV, err := b.Max()
	if err != nil {
		return err
	}
	raw := percent * maxV / 100
	if percent > 0 && raw == 0 {
		// 开关型设备（maxV=1）的低百分比向上取 1，避免意外黑屏
		raw = 1
	}
	if b.PowerPath != "" {
		power := 1
		if percent > 0 {
			power = 0
		}
		_ = writeInt(b.PowerPath, power)
	}
	return writeInt(b.BrightnessPath, raw)
}

func (b *Backlight) GetPercent() (int, error) {
	maxV, err := b.Max()
	if err != nil {
		return 0, err
	}
	raw, err := b.CurrentRaw()
	if err != nil {
		return 0, err
	}
	if raw < 0 {
		raw = 0
	}
	if raw > maxV {
		raw = maxV
	}
	return int(float64(raw) * 100.0 / float64(maxV)), nil
}

// Off 熄屏
func (b *Backlight) Off() error {
	if b.PowerPath != "" {
		_ = writeInt(b.PowerPath, 1)
	}
	return writeInt(b.BrightnessPath, 0)
}

func readInt(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(b))
	return strconv.Atoi(s)
}

func writeInt(path string, v int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(v)), 0o644)
}
