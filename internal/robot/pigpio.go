package robot

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	"rubik-device/internal/logger"
)

// PulseWriter 舵机脉宽输出。生产环境由 pigpiod 实现，测试用假实现。
type PulseWriter interface {
	// SetServoPulsewidth 设置舵机脉宽（微秒）；0 表示停止输出
	SetServoPulsewidth(gpio, pulseWidth int) error
	Close() error
}

// pigpiod 套接字协议命令号
const cmdServo = 8

// PigpioClient 通过 pigpiod 守护进程的套接字接口控制 GPIO。
// 协议：16 字节小端帧 [cmd, p1, p2, p3]，响应同构，末 4 字节为结果。
type PigpioClient struct {
	mu   sync.Mutex
	conn net.Conn
	addr string
}

// DialPigpio 连接 pigpiod；addr 形如 "localhost:8888"
func DialPigpio(addr string) (*PigpioClient, error) {
	if addr == "" {
		addr = "localhost:8888"
	}
	conn, err := net.DialTimeout("tcp", addr, 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("连接 pigpiod 失败 (%s): %w (pigpiod 是否已启动?)", addr, err)
	}
	logger.Info("pigpiod 已连接: %s", addr)
	return &PigpioClient{conn: conn, addr: addr}, nil
}

// SetServoPulsewidth 设置舵机脉宽
func (c *PigpioClient) SetServoPulsewidth(gpio, pulseWidth int) error {
	res, err := c.command(cmdServo, uint32(gpio), uint32(pulseWidth))
	if err != nil {
		return err
	}
	if res < 0 {
		return fmt.Errorf("pigpiod SERVO 出错: gpio=%d pw=%d code=%d", gpio, pulseWidth, res)
	}
	return nil
}

// command 发送一条命令并等待响应；套接字访问串行化
func (c *PigpioClient) command(cmd, p1, p2 uint32) (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var req [16]byte
	binary.LittleEndian.PutUint32(req[0:4], cmd)
	binary.LittleEndian.PutUint32(req[4:8], p1)
	binary.LittleEndian.PutUint32(req[8:12], p2)
	// p3 = 0，无附加数据

	c.conn.SetDeadline(time.Now().Add(3 * time.Second))
	if _, err := c.conn.Write(req[:]); err != nil {
		return 0, fmt.Errorf("pigpiod 写入失败: %w", err)
	}

	var resp [16]byte
	if _, err := readFull(c.conn, resp[:]); err != nil {
		return 0, fmt.Errorf("pigpiod 读取失败: %w", err)
	}
	return int32(binary.LittleEndian.Uint32(resp[12:16])), nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Close 关闭连接
func (c *PigpioClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
