package tools

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"
)

// NetworkTools 网络信息查询（调试界面用）
type NetworkTools struct {
	wifiIface string
}

// NewNetworkTools 创建网络工具；iface 为空时默认 wlan0
func NewNetworkTools(iface string) *NetworkTools {
	if iface == "" {
		iface = "wlan0"
	}
	return &NetworkTools{wifiIface: iface}
}

// LocalIP 获取本机对外 IP
// 通过 UDP "连接" 公网地址让内核选路，不产生真实流量。
func (nt *NetworkTools) LocalIP() string {
	conn, err := net.DialTimeout("udp", "8.8.8.8:80", time.Second)
	if err != nil {
		return ""
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return ""
	}
	return addr.IP.String()
}

// WiFiSSID 获取当前连接的 WiFi 名称；未连接或无 iwgetid 时返回空串
func (nt *NetworkTools) WiFiSSID() string {
	out, err := runCmd(2*time.Second, "iwgetid", nt.wifiIface, "-r")
	if err != nil {
		return ""
	}
	return out
}

func runCmd(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	s := strings.TrimSpace(string(out))
	if ctx.Err() == context.DeadlineExceeded {
		return s, fmt.Errorf("命令超时: %s %v", name, args)
	}
	if err != nil {
		if s != "" {
			return s, fmt.Errorf("命令失败: %s %v: %v: %s", name, args, err, s)
		}
		return s, fmt.Errorf("命令失败: %s %v: %v", name, args, err)
	}
	return s, nil
}
