package tools

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"rubik-device/internal/logger"
)

// RemoteUser 远程登录会话（SSH 等）
type RemoteUser struct {
	User     string `json:"user"`
	Terminal string `json:"terminal"`
	Host     string `json:"host"`
	Started  int    `json:"started"`
}

// SystemInfo 系统状态快照（API /api/status 返回）
type SystemInfo struct {
	Hostname    string  `json:"hostname"`
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryUsage float64 `json:"memory_usage"`
	DiskUsage   float64 `json:"disk_usage"`
	CPUTempC    float64 `json:"cpu_temp_c"`
	UptimeSec   uint64  `json:"uptime_sec"`
	BootTime    string  `json:"boot_time"`
}

// SystemTools 系统查询与电源控制
type SystemTools struct{}

// NewSystemTools 创建系统工具
func NewSystemTools() *SystemTools {
	return &SystemTools{}
}

// Shutdown 关机（Home 界面电源按钮）
func (st *SystemTools) Shutdown() error {
	logger.Info("触发系统关机")
	_, err := runCmd(5*time.Second, "sudo", "shutdown", "-h", "now")
	return err
}

// RemoteUsers 当前的远程登录会话；本地控制台（无 host）被过滤
func (st *SystemTools) RemoteUsers() []RemoteUser {
	users, err := host.Users()
	if err != nil {
		logger.Warn("读取登录会话失败: %v", err)
		return nil
	}
	var out []RemoteUser
	for _, u := range users {
		if u.Host == "" {
			continue
		}
		out = append(out, RemoteUser{
			User:     u.User,
			Terminal: u.Terminal,
			Host:     u.Host,
			Started:  u.Started,
		})
	}
	return out
}

// Snapshot 采集系统状态
func (st *SystemTools) Snapshot() SystemInfo {
	var info SystemInfo

	if hi, err := host.Info(); err == nil && hi != nil {
		info.Hostname = hi.Hostname
		info.UptimeSec = hi.Uptime
		if hi.BootTime > 0 {
			info.BootTime = time.Unix(int64(hi.BootTime), 0).Format(time.RFC3339)
		}
	}
	if v, err := cpu.Percent(0, false); err == nil && len(v) > 0 {
		info.CPUUsage = v[0]
	}
	if m, err := mem.VirtualMemory(); err == nil && m != nil {
		info.MemoryUsage = m.UsedPercent
	}
	if du, err := disk.Usage("/"); err == nil && du != nil {
		info.DiskUsage = du.UsedPercent
	}
	info.CPUTempC = cpuTemperature()
	return info
}

// cpuTemperature 树莓派的 SoC 温度（cpu_thermal）；取不到返回 0
func cpuTemperature() float64 {
	temps, err := host.SensorsTemperatures()
	if err != nil || len(temps) == 0 {
		return 0
	}
	for _, t := range temps {
		switch t.SensorKey {
		case "cpu_thermal", "cpu-thermal", "coretemp":
			return t.Temperature
		}
	}
	return temps[0].Temperature
}
