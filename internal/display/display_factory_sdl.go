//go:build preview

package display

// NewDisplay 创建显示实例 (Preview)
// device 参数仅生产构建使用，这里忽略
func NewDisplay(title string, width, height int, device string) (Display, error) {
	disp := NewSDL2(title, width, height)
	if err := disp.Init(); err != nil {
		return nil, err
	}
	return disp, nil
}
