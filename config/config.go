package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultDeviceName 默认设备名称（可在编译时覆盖）：
//
//	go build -ldflags "-X 'rubik-device/config.DefaultDeviceName=Rubik R2'"
var DefaultDeviceName = "Rubik R1"

// Config 应用配置
type Config struct {
	Device  DeviceConfig  `json:"device"`
	Display DisplayConfig `json:"display"`
	Touch   TouchConfig   `json:"touch"`
	Servo   ServoConfig   `json:"servo"`
	System  SystemConfig  `json:"system"`
	Server  ServerConfig  `json:"server"`
}

// DeviceConfig 设备配置
type DeviceConfig struct {
	Name string `json:"name"`
}

// DisplayConfig 显示配置
// 面板本身由 fbtft overlay 驱动（/dev/fb0），这里只描述逻辑分辨率
type DisplayConfig struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	FrameRate int    `json:"frame_rate"` // 渲染帧率（fps）
	FBDevice  string `json:"fb_device"`
}

// TouchConfig 触摸配置（XPT2046 位带 SPI）
type TouchConfig struct {
	// GPIO 引脚名（periph gpioreg 命名，如 "GPIO17"）
	IRQPin  string `json:"irq_pin"`
	CSPin   string `json:"cs_pin"`
	CLKPin  string `json:"clk_pin"`
	MOSIPin string `json:"mosi_pin"`
	MISOPin string `json:"miso_pin"`

	// 原始值校准边界（由离线校准工具测得）
	XMin int `json:"x_min"`
	XMax int `json:"x_max"`
	YMin int `json:"y_min"`
	YMax int `json:"y_max"`

	// 物理贴屏方向导致的轴反转
	InvertX bool `json:"invert_x"`
	InvertY bool `json:"invert_y"`

	// 防抖阈值（像素）；移动小于该值不会上报
	MoveThreshold int `json:"move_threshold"`
}

// ServoConfig 舵机配置（脉宽单位 µs）
type ServoConfig struct {
	BottomPin int `json:"bottom_pin"` // 下舵机：转盘
	TopPin    int `json:"top_pin"`    // 上舵机：盖板

	PulseLeft  int `json:"pulse_left"`
	PulseMid   int `json:"pulse_mid"`
	PulseRight int `json:"pulse_right"`
	PulseOpen  int `json:"pulse_open"`
	PulseClose int `json:"pulse_close"`
	PulseFlip  int `json:"pulse_flip"`

	// 机械微调
	TrimRight          int `json:"trim_right"`
	TrimLeft           int `json:"trim_left"`
	TrimMidConstrained int `json:"trim_mid_constrained"`
	CoverRelease       int `json:"cover_release"` // 关盖后的微回松，防剪切

	// 时序（毫秒）
	WaitFreeMs      int `json:"wait_free_ms"`      // 自由旋转等待
	WaitRotateMs    int `json:"wait_rotate_ms"`    // 受约束旋转等待
	CoverCloseMs    int `json:"cover_close_ms"`    // 关盖等待
	CoverSettleMs   int `json:"cover_settle_ms"`   // 关盖后静置再旋转
	RotateHoldMs    int `json:"rotate_hold_ms"`    // 旋转后保持关盖
	SpinSettleMs    int `json:"spin_settle_ms"`    // 旋转后防振荡停顿
	SlowStepMicros  int `json:"slow_step_us"`      // move_slow 每步步长 µs
	SlowStepDelayMs int `json:"slow_step_delay_ms"`

	// pigpiod 套接字地址
	PigpiodAddr string `json:"pigpiod_addr"`
}

// SystemConfig 系统设置（设备侧面板设置）
type SystemConfig struct {
	// ScreenOffSeconds 空闲熄屏秒数；nil 或 0 表示不熄屏
	ScreenOffSeconds *int `json:"screen_off_seconds,omitempty"`
	// Brightness 亮度 0~100；nil 表示不主动修改
	Brightness *int `json:"brightness,omitempty"`
}

// ServerConfig 调试 API 配置
type ServerConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// DefaultConfig 返回默认配置（校准与脉宽默认值来自实测标定）
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{Name: DefaultDeviceName},
		Display: DisplayConfig{
			Width:     320,
			Height:    240,
			FrameRate: 10,
			FBDevice:  "/dev/fb0",
		},
		Touch: TouchConfig{
			IRQPin:  "GPIO17",
			CSPin:   "GPIO27",
			CLKPin:  "GPIO18",
			MOSIPin: "GPIO23",
			MISOPin: "GPIO19",
			// 两次实测取平均
			XMin:          292,
			XMax:          3935,
			YMin:          159,
			YMax:          3984,
			InvertX:       true,
			InvertY:       true,
			MoveThreshold: 2,
		},
		Servo: ServoConfig{
			BottomPin:          24,
			TopPin:             23,
			PulseLeft:          850,
			PulseMid:           1500,
			PulseRight:         2150,
			PulseOpen:          1250,
			PulseClose:         1500,
			PulseFlip:          800,
			TrimRight:          30,
			TrimLeft:           -10,
			TrimMidConstrained: 10,
			CoverRelease:       15,
			WaitFreeMs:         650,
			WaitRotateMs:       900,
			CoverCloseMs:       350,
			CoverSettleMs:      250,
			RotateHoldMs:       700,
			SpinSettleMs:       120,
			SlowStepMicros:     10,
			SlowStepDelayMs:    20,
			PigpiodAddr:        "localhost:8888",
		},
		System: SystemConfig{},
		Server: ServerConfig{Enabled: true, Port: 8089},
	}
}

func defaultConfigPath() string {
	// Linux 设备侧保持 /etc；本地开发默认落到工作目录，方便调试
	if runtime.GOOS == "linux" {
		return "/etc/rubik/config.json"
	}
	if wd, err := os.Getwd(); err == nil && strings.TrimSpace(wd) != "" {
		return filepath.Join(wd, "config.json")
	}
	return filepath.Join(os.TempDir(), "rubik", "config.json")
}

// GetConfigPath 获取配置文件路径（环境变量优先）
func GetConfigPath() string {
	if p := os.Getenv("RUBIK_CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath()
}

// LoadConfig 加载配置；文件不存在时写出默认配置
func LoadConfig() (*Config, error) {
	configPath := GetConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return nil, err
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// 兼容补全：旧配置缺字段时仅在零值场景补默认，不覆盖用户显式配置
	if applyDefaults(&cfg) {
		_ = cfg.Save()
	}

	return &cfg, nil
}

// applyDefaults 为零值字段补默认，返回是否有改动
func applyDefaults(cfg *Config) bool {
	def := DefaultConfig()
	changed := false

	if cfg.Device.Name == "" {
		cfg.Device.Name = def.Device.Name
		changed = true
	}
	if cfg.Display.Width <= 0 || cfg.Display.Height <= 0 {
		cfg.Display.Width = def.Display.Width
		cfg.Display.Height = def.Display.Height
		changed = true
	}
	if cfg.Display.FrameRate <= 0 {
		cfg.Display.FrameRate = def.Display.FrameRate
		changed = true
	}
	if cfg.Display.FBDevice == "" {
		cfg.Display.FBDevice = def.Display.FBDevice
		changed = true
	}
	if cfg.Touch.IRQPin == "" {
		cfg.Touch = def.Touch
		changed = true
	}
	if cfg.Touch.MoveThreshold <= 0 {
		cfg.Touch.MoveThreshold = def.Touch.MoveThreshold
		changed = true
	}
	if cfg.Touch.XMax <= cfg.Touch.XMin || cfg.Touch.YMax <= cfg.Touch.YMin {
		cfg.Touch.XMin, cfg.Touch.XMax = def.Touch.XMin, def.Touch.XMax
		cfg.Touch.YMin, cfg.Touch.YMax = def.Touch.YMin, def.Touch.YMax
		cfg.Touch.InvertX, cfg.Touch.InvertY = def.Touch.InvertX, def.Touch.InvertY
		changed = true
	}
	if cfg.Servo.BottomPin == 0 && cfg.Servo.TopPin == 0 {
		cfg.Servo = def.Servo
		changed = true
	}
	if cfg.Servo.PigpiodAddr == "" {
		cfg.Servo.PigpiodAddr = def.Servo.PigpiodAddr
		changed = true
	}
	if cfg.Server.Port == 0 {
		cfg.Server = def.Server
		changed = true
	}
	return changed
}

// Save 保存配置。先写临时文件再原子替换，断电不会留下半截配置
func (c *Config) Save() error {
	configPath := GetConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	tmp := configPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, configPath); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("显示分辨率无效: %dx%d", c.Display.Width, c.Display.Height)
	}
	if c.Touch.XMax <= c.Touch.XMin || c.Touch.YMax <= c.Touch.YMin {
		return fmt.Errorf("触摸校准边界无效: X[%d,%d] Y[%d,%d]",
			c.Touch.XMin, c.Touch.XMax, c.Touch.YMin, c.Touch.YMax)
	}
	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("服务器端口无效: %d", c.Server.Port)
	}
	return nil
}
