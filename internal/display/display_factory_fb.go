//go:build !preview

package display

// NewDisplay 创建显示实例 (Production - Framebuffer)
func NewDisplay(title string, width, height int, device string) (Display, error) {
	disp := &fbDisplay{
		device: device,
		width:  width,
		height: height,
	}
	if err := disp.Init(); err != nil {
		return nil, err
	}
	return disp, nil
}
