package touch

// Point 校准后的像素坐标
type Point struct {
	X int
	Y int
}

// 原始读数合理性窗口：贴近 0 或满量程的读数视为电气噪声
const (
	rawFloor = 100
	rawCeil  = 4000
)

// Calibration 原始读数到像素坐标的线性映射；构造后不可变。
// 边界值由离线校准工具测得，对应屏幕物理边缘的原始读数。
type Calibration struct {
	XMin, XMax int
	YMin, YMax int

	Width, Height int

	// 贴屏方向导致的轴反转
	InvertX bool
	InvertY bool
}

// ValidRaw 判断一对原始读数是否落在合理性窗口内
func (c Calibration) ValidRaw(xRaw, yRaw int) bool {
	return xRaw > rawFloor && xRaw < rawCeil && yRaw > rawFloor && yRaw < rawCeil
}

// Map 将原始读数映射为像素坐标（线性缩放 + 轴反转 + 边界钳制）
func (c Calibration) Map(xRaw, yRaw int) Point {
	xSpan := c.XMax - c.XMin
	ySpan := c.YMax - c.YMin

	var x, y int
	if c.InvertX {
		x = (c.XMax - xRaw) * c.Width / xSpan
	} else {
		x = (xRaw - c.XMin) * c.Width / xSpan
	}
	if c.InvertY {
		y = (c.YMax - yRaw) * c.Height / ySpan
	} else {
		y = (yRaw - c.YMin) * c.Height / ySpan
	}

	return Point{
		X: clamp(x, 0, c.Width-1),
		Y: clamp(y, 0, c.Height-1),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
