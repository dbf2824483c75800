package display

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/math/fixed"
)

const (
	// 设计稿基准尺寸：所有界面以 320x240（ILI9341 横屏）作为逻辑坐标系
	designW = 320
	designH = 240
)

// DesignSize 逻辑分辨率
func DesignSize() (int, int) { return designW, designH }

// Graphics 图形绘制库
type Graphics struct {
	buffer *image.RGBA
	scaleX float64
	scaleY float64
}

// NewGraphics 创建图形库实例
func NewGraphics(buffer *image.RGBA) *Graphics {
	w := buffer.Bounds().Dx()
	h := buffer.Bounds().Dy()
	sx := float64(w) / float64(designW)
	sy := float64(h) / float64(designH)
	if sx <= 0 {
		sx = 1
	}
	if sy <= 0 {
		sy = 1
	}
	return &Graphics{
		buffer: buffer,
		scaleX: sx,
		scaleY: sy,
	}
}

func (g *Graphics) sx(v int) int { return int(math.Round(float64(v) * g.scaleX)) }
func (g *Graphics) sy(v int) int { return int(math.Round(float64(v) * g.scaleY)) }
func (g *Graphics) sr(v int) int {
	// 半径取平均缩放
	s := (g.scaleX + g.scaleY) * 0.5
	return int(math.Round(float64(v) * s))
}

func (g *Graphics) drawRectPx(x, y, w, h int, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	rect := image.Rect(x, y, x+w, y+h)
	draw.Draw(g.buffer, rect, &image.Uniform{c}, image.Point{}, draw.Src)
}

// Clear 清空画布
func (g *Graphics) Clear(c color.Color) {
	draw.Draw(g.buffer, g.buffer.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
}

// DrawRect 绘制实心矩形
func (g *Graphics) DrawRect(x, y, w, h int, c color.Color) {
	g.drawRectPx(g.sx(x), g.sy(y), g.sx(w), g.sy(h), c)
}

// DrawRectOutline 绘制矩形边框
func (g *Graphics) DrawRectOutline(x, y, w, h int, c color.Color) {
	g.DrawLine(x, y, x+w-1, y, c)
	g.DrawLine(x, y+h-1, x+w-1, y+h-1, c)
	g.DrawLine(x, y, x, y+h-1, c)
	g.DrawLine(x+w-1, y, x+w-1, y+h-1, c)
}

// DrawLine 绘制直线（Bresenham）
func (g *Graphics) DrawLine(x0, y0, x1, y1 int, c color.Color) {
	x0 = g.sx(x0)
	y0 = g.sy(y0)
	x1 = g.sx(x1)
	y1 = g.sy(y1)

	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}

	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}

	err := dx - dy

	for {
		if x0 >= 0 && x0 < g.buffer.Bounds().Dx() && y0 >= 0 && y0 < g.buffer.Bounds().Dy() {
			g.buffer.Set(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := err * 2
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawRectRounded 绘制圆角实心矩形
func (g *Graphics) DrawRectRounded(x, y, w, h, radius int, c color.Color) {
	x = g.sx(x)
	y = g.sy(y)
	w = g.sx(w)
	h = g.sy(h)
	radius = g.sr(radius)

	g.drawRectPx(x+radius, y, w-2*radius, h, c)
	g.drawRectPx(x, y+radius, w, h-2*radius, c)

	g.drawFilledCircleCorner(x+radius, y+radius, radius, c, 2)     // 左上
	g.drawFilledCircleCorner(x+w-radius, y+radius, radius, c, 1)   // 右上
	g.drawFilledCircleCorner(x+radius, y+h-radius, radius, c, 3)   // 左下
	g.drawFilledCircleCorner(x+w-radius, y+h-radius, radius, c, 4) // 右下
}

// DrawRectRoundedOutline 绘制圆角矩形边框（按钮按下态高亮）
func (g *Graphics) DrawRectRoundedOutline(x, y, w, h, radius int, c color.Color) {
	g.DrawLine(x+radius, y, x+w-radius, y, c)
	g.DrawLine(x+radius, y+h-1, x+w-radius, y+h-1, c)
	g.DrawLine(x, y+radius, x, y+h-radius, c)
	g.DrawLine(x+w-1, y+radius, x+w-1, y+h-radius, c)
	// 圆角段用短斜线近似，半径很小时视觉差异可忽略
	g.DrawLine(x, y+radius, x+radius, y, c)
	g.DrawLine(x+w-radius-1, y, x+w-1, y+radius, c)
	g.DrawLine(x, y+h-radius-1, x+radius, y+h-1, c)
	g.DrawLine(x+w-radius-1, y+h-1, x+w-1, y+h-radius-1, c)
}

// drawFilledCircleCorner 绘制圆角（四分之一圆）
func (g *Graphics) drawFilledCircleCorner(cx, cy, r int, c color.Color, quadrant int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			switch quadrant {
			case 1: // 右上
				if dx < 0 || dy > 0 {
					continue
				}
			case 2: // 左上
				if dx > 0 || dy > 0 {
					continue
				}
			case 3: // 左下
				if dx > 0 || dy < 0 {
					continue
				}
			case 4: // 右下
				if dx < 0 || dy < 0 {
					continue
				}
			}
			px, py := cx+dx, cy+dy
			if px >= 0 && px < g.buffer.Bounds().Dx() && py >= 0 && py < g.buffer.Bounds().Dy() {
				g.buffer.Set(px, py, c)
			}
		}
	}
}

// DrawCircle 绘制实心圆
func (g *Graphics) DrawCircle(cx, cy, r int, c color.Color) {
	cx = g.sx(cx)
	cy = g.sy(cy)
	r = g.sr(r)
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx := x - cx
			dy := y - cy
			if dx*dx+dy*dy <= r*r {
				if x >= 0 && x < g.buffer.Bounds().Dx() && y >= 0 && y < g.buffer.Bounds().Dy() {
					g.buffer.Set(x, y, c)
				}
			}
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (g *Graphics) blendPixelRGBA(x, y int, src color.RGBA) {
	if x < 0 || y < 0 || x >= g.buffer.Bounds().Dx() || y >= g.buffer.Bounds().Dy() {
		return
	}
	i := y*g.buffer.Stride + x*4
	dstR := float64(g.buffer.Pix[i+0])
	dstG := float64(g.buffer.Pix[i+1])
	dstB := float64(g.buffer.Pix[i+2])
	dstA := float64(g.buffer.Pix[i+3]) / 255.0

	sa := float64(src.A) / 255.0
	if sa <= 0 {
		return
	}

	// Porter-Duff over
	outA := sa + dstA*(1-sa)
	if outA <= 0 {
		return
	}
	outR := (float64(src.R)*sa + dstR*dstA*(1-sa)) / outA
	outG := (float64(src.G)*sa + dstG*dstA*(1-sa)) / outA
	outB := (float64(src.B)*sa + dstB*dstA*(1-sa)) / outA

	g.buffer.Pix[i+0] = uint8(clamp01(outR/255.0) * 255.0)
	g.buffer.Pix[i+1] = uint8(clamp01(outG/255.0) * 255.0)
	g.buffer.Pix[i+2] = uint8(clamp01(outB/255.0) * 255.0)
	g.buffer.Pix[i+3] = uint8(clamp01(outA) * 255.0)
}

// DrawCircleAA 绘制抗锯齿实心圆（状态指示点）
func (g *Graphics) DrawCircleAA(cx, cy, r int, c color.Color) {
	cx = g.sx(cx)
	cy = g.sy(cy)
	r = g.sr(r)
	if r <= 0 {
		return
	}
	cr, cg, cb, ca := c.RGBA()
	base := color.RGBA{uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8), uint8(ca >> 8)}

	rr := float64(r)
	inner2 := (rr - 0.5) * (rr - 0.5)
	outer := rr + 0.5
	outer2 := outer * outer

	for y := cy - r - 1; y <= cy+r+1; y++ {
		dy := float64(y - cy)
		for x := cx - r - 1; x <= cx+r+1; x++ {
			dx := float64(x - cx)
			d2 := dx*dx + dy*dy
			if d2 <= inner2 {
				g.blendPixelRGBA(x, y, base)
				continue
			}
			if d2 >= outer2 {
				continue
			}
			cover := clamp01(outer - math.Sqrt(d2))
			if cover <= 0 {
				continue
			}
			s := base
			s.A = uint8(float64(base.A) * cover)
			g.blendPixelRGBA(x, y, s)
		}
	}
}

// DrawProgressBar 绘制进度条；ratio 取值 0..1
func (g *Graphics) DrawProgressBar(x, y, w, h int, ratio float64, track, fill color.Color) {
	ratio = clamp01(ratio)
	g.DrawRectRounded(x, y, w, h, h/2, track)
	fw := int(math.Round(float64(w) * ratio))
	if fw <= 0 {
		return
	}
	if fw < h {
		// 太短画不出圆角，退化为小圆
		g.DrawCircle(x+h/2, y+h/2, h/2, fill)
		return
	}
	g.DrawRectRounded(x, y, fw, h, h/2, fill)
}

// DrawTextTTF 使用 TrueType 字体绘制文本；(x,y) 为文字区域左上角
func (g *Graphics) DrawTextTTF(text string, x, y int, c color.Color, size float64, weight FontWeight) error {
	ttfFont := GetFontManager().GetFont(weight)
	if ttfFont == nil {
		return nil
	}

	// 渲染层按屏幕缩放，布局仍以 320x240 逻辑坐标计算
	sx := float64(x) * g.scaleX
	sy := float64(y) * g.scaleY
	sz := size * g.scaleX
	if sz < 1 {
		sz = 1
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttfFont)
	ctx.SetFontSize(sz)
	ctx.SetClip(g.buffer.Bounds())
	ctx.SetDst(g.buffer)
	ctx.SetSrc(&image.Uniform{c})

	pt := freetype.Pt(int(math.Round(sx)), int(math.Round(sy+sz)))
	_, err := ctx.DrawString(text, pt)
	return err
}

// MeasureText 测量文本逻辑宽度
func (g *Graphics) MeasureText(text string, size float64, weight FontWeight) int {
	ttfFont := GetFontManager().GetFont(weight)
	if ttfFont == nil {
		return len(text) * int(size) / 2
	}

	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size: size,
		DPI:  72,
	})
	defer face.Close()

	width := fixed.Int26_6(0)
	for _, ch := range text {
		advance, ok := face.GlyphAdvance(ch)
		if !ok {
			width += fixed.Int26_6(int(size) * 64 / 2)
			continue
		}
		width += advance
	}
	return int(width >> 6)
}

// TextAlign 文本对齐方式
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// DrawTextBox 在矩形区域内按词换行绘制多行文本，超出高度的行丢弃
func (g *Graphics) DrawTextBox(text string, x1, y1, x2, y2 int, c color.Color, size float64, align TextAlign, lineSpacing int) {
	maxWidth := x2 - x1
	if maxWidth <= 0 {
		return
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		current := ""
		for _, w := range strings.Fields(paragraph) {
			test := strings.TrimSpace(current + " " + w)
			if g.MeasureText(test, size, FontWeightRegular) <= maxWidth {
				current = test
				continue
			}
			if current != "" {
				lines = append(lines, current)
			}
			current = w
		}
		if current != "" {
			lines = append(lines, current)
		}
	}

	lineH := int(size) + 2
	y := y1
	for _, line := range lines {
		if y+lineH > y2 {
			break
		}
		w := g.MeasureText(line, size, FontWeightRegular)
		x := x1
		switch align {
		case AlignCenter:
			x = x1 + (maxWidth-w)/2
		case AlignRight:
			x = x2 - w
		}
		_ = g.DrawTextTTF(line, x, y, c, size, FontWeightRegular)
		y += lineH + lineSpacing
	}
}
