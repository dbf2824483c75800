//go:build !preview

package display

import (
	"encoding/binary"
	"fmt"
	"image"
	"os"
	"syscall"
	"unsafe"

	"rubik-device/internal/logger"
)

type fbDisplay struct {
	fbFile *os.File
	fbMem  []byte
	device string
	// width/height: UI 后缓冲的逻辑分辨率（320x240）
	width  int
	height int
	// fbWidth/fbHeight: framebuffer 的真实分辨率
	fbWidth  int
	fbHeight int
	fbBpp    int

	backBuffer *image.RGBA
}

// fbVarScreenInfoRaw:
// Linux 的 FBIOGET_VSCREENINFO 会向用户态写入完整的 struct fb_var_screeninfo。
// 若这里定义的结构体过小，会导致内核写越界 -> 运行时崩溃（arm 上更明显）。
//
// 为避免与不同内核版本的字段差异/对齐问题，这里用足够大的原始 buffer 接收，
// 再解析我们关心的字段：xres/yres/bits_per_pixel
type fbVarScreenInfoRaw [160]byte

const (
	FBIOGET_VSCREENINFO = 0x4600
)

func (d *fbDisplay) Init() error {
	dev := d.device
	if dev == "" {
		dev = "/dev/fb0"
	}
	fbFile, err := os.OpenFile(dev, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("打开 %s 失败: %v", dev, err)
	}
	d.fbFile = fbFile

	var fbInfo fbVarScreenInfoRaw
	_, _, errno := syscall.Syscall(
		syscall.SYS_IOCTL,
		uintptr(fbFile.Fd()),
		uintptr(FBIOGET_VSCREENINFO),
		uintptr(unsafe.Pointer(&fbInfo[0])),
	)
	if errno != 0 {
		return fmt.Errorf("获取 framebuffer 信息失败: %v", errno)
	}

	// fb_var_screeninfo 为小端；树莓派 (armv7l/aarch64) 也是小端
	d.fbWidth = int(binary.LittleEndian.Uint32(fbInfo[0:4]))
	d.fbHeight = int(binary.LittleEndian.Uint32(fbInfo[4:8]))
	d.fbBpp = int(binary.LittleEndian.Uint32(fbInfo[24:28]))

	// ili9341 的 fbtft 驱动是 16bpp；HDMI 输出一般是 32bpp
	if d.fbBpp != 16 && d.fbBpp != 32 {
		return fmt.Errorf("不支持的像素格式: %dbpp", d.fbBpp)
	}

	if d.width <= 0 || d.height <= 0 {
		d.width = d.fbWidth
		d.height = d.fbHeight
	}

	fbSize := int(uint64(d.fbWidth) * uint64(d.fbHeight) * uint64(d.fbBpp) / 8)
	fbMem, err := syscall.Mmap(
		int(fbFile.Fd()),
		0,
		fbSize,
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_SHARED,
	)
	if err != nil {
		return fmt.Errorf("映射 framebuffer 内存失败: %v", err)
	}
	d.fbMem = fbMem

	d.backBuffer = image.NewRGBA(image.Rect(0, 0, d.width, d.height))

	logger.Info("framebuffer %s 就绪: %dx%d %dbpp", dev, d.fbWidth, d.fbHeight, d.fbBpp)
	return nil
}

func (d *fbDisplay) Close() error {
	if d.fbMem != nil {
		syscall.Munmap(d.fbMem)
	}
	if d.fbFile != nil {
		d.fbFile.Close()
	}
	return nil
}

func (d *fbDisplay) GetWidth() int {
	return d.width
}

func (d *fbDisplay) GetHeight() int {
	return d.height
}

func (d *fbDisplay) GetBackBuffer() *image.RGBA {
	return d.backBuffer
}

func (d *fbDisplay) Update() error {
	if d.fbBpp == 16 {
		d.updateRGB565()
		return nil
	}

	// 32bpp：分辨率一致时直接整块拷贝
	if d.fbWidth == d.width && d.fbHeight == d.height {
		copy(d.fbMem, d.backBuffer.Pix)
		return nil
	}
	d.updateScaled32()
	return nil
}

// updateRGB565 将 RGBA 后缓冲转为 RGB565 写入（ili9341 fbtft 路径）
func (d *fbDisplay) updateRGB565() {
	srcW := d.width
	srcH := d.height
	dstW := d.fbWidth
	dstH := d.fbHeight
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return
	}
	if len(d.fbMem) < dstW*dstH*2 {
		return
	}

	for dy := 0; dy < dstH; dy++ {
		sy := dy * srcH / dstH
		dstRow := dy * dstW * 2
		srcRow := sy * d.backBuffer.Stride
		for dx := 0; dx < dstW; dx++ {
			sx := dx * srcW / dstW
			si := srcRow + sx*4
			r := uint16(d.backBuffer.Pix[si+0])
			g := uint16(d.backBuffer.Pix[si+1])
			b := uint16(d.backBuffer.Pix[si+2])
			v := (r>>3)<<11 | (g>>2)<<5 | b>>3
			di := dstRow + dx*2
			d.fbMem[di+0] = byte(v)
			d.fbMem[di+1] = byte(v >> 8)
		}
	}
}

// updateScaled32 nearest 缩放到 32bpp framebuffer
func (d *fbDisplay) updateScaled32() {
	srcW := d.width
	srcH := d.height
	dstW := d.fbWidth
	dstH := d.fbHeight
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return
	}
	if len(d.fbMem) < dstW*dstH*4 {
		// 兜底：尽量 copy 前半段，避免 panic
		n := len(d.fbMem)
		if len(d.backBuffer.Pix) < n {
			n = len(d.backBuffer.Pix)
		}
		if n > 0 {
			copy(d.fbMem[:n], d.backBuffer.Pix[:n])
		}
		return
	}

	for dy := 0; dy < dstH; dy++ {
		sy := dy * srcH / dstH
		dstRow := dy * dstW * 4
		srcRow := sy * d.backBuffer.Stride
		for dx := 0; dx < dstW; dx++ {
			sx := dx * srcW / dstW
			si := srcRow + sx*4
			di := dstRow + dx*4
			d.fbMem[di+0] = d.backBuffer.Pix[si+0]
			d.fbMem[di+1] = d.backBuffer.Pix[si+1]
			d.fbMem[di+2] = d.backBuffer.Pix[si+2]
			d.fbMem[di+3] = d.backBuffer.Pix[si+3]
		}
	}
}

func (d *fbDisplay) PollEvents() (shouldQuit bool) {
	// 生产环境不处理退出事件
	return false
}

// GetTouchEvents 生产环境触摸走 XPT2046 驱动回调，不经过显示层
func (d *fbDisplay) GetTouchEvents() []TouchEvent {
	return nil
}
