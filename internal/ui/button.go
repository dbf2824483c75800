package ui

// ButtonState 按钮状态。单次手势内最多一个按钮处于非 Idle 状态。
type ButtonState int

const (
	// ButtonIdle 未被按下
	ButtonIdle ButtonState = iota
	// ButtonPressed 按下且手指仍在区域内
	ButtonPressed
	// ButtonDragOut 按下后手指移出区域：视觉上取消按下，
	// 但仍占有本次手势，release 回调照常触发
	ButtonDragOut
)

// Button 声明式触摸按钮，矩形命中区域 [X1,Y1]..[X2,Y2]（四边含边界）
type Button struct {
	X1, Y1, X2, Y2 int

	// OnClick 点击确认回调（按下和松开都在区域内）
	OnClick func()
	// OnPress 按下回调
	OnPress func()
	// OnRelease 松开回调（即使已移出区域也触发）
	OnRelease func()

	state ButtonState
}

// Contains 判断 (x,y) 是否在按钮区域内（含边界）
func (b *Button) Contains(x, y int) bool {
	return b.X1 <= x && x <= b.X2 && b.Y1 <= y && y <= b.Y2
}

// Pressed 是否处于按下态（渲染高亮用）
func (b *Button) Pressed() bool {
	return b.state == ButtonPressed
}

// State 当前状态
func (b *Button) State() ButtonState {
	return b.state
}

// Registry 按钮注册表。注册顺序即命中优先级：
// 重叠区域按下时先注册者获胜。
// 所有派发入口都由界面管理器在锁内串行调用，这里不加锁。
type Registry struct {
	buttons []*Button
}

// Add 注册按钮并返回引用（渲染时查询按下态）
func (r *Registry) Add(x1, y1, x2, y2 int, onClick, onPress, onRelease func()) *Button {
	btn := &Button{
		X1: x1, Y1: y1, X2: x2, Y2: y2,
		OnClick:   onClick,
		OnPress:   onPress,
		OnRelease: onRelease,
	}
	r.buttons = append(r.buttons, btn)
	return btn
}

// DispatchPress 派发按下：第一个命中的按钮获得本次手势，其余不再尝试
func (r *Registry) DispatchPress(x, y int) {
	for _, btn := range r.buttons {
		if !btn.Contains(x, y) {
			continue
		}
		btn.state = ButtonPressed
		if btn.OnPress != nil {
			btn.OnPress()
		}
		return
	}
}

// DispatchRelease 派发松开：占有手势的按钮触发 release；
// 松开位置仍在区域内且未曾移出时追加 click。
func (r *Registry) DispatchRelease(x, y int) {
	for _, btn := range r.buttons {
		if btn.state == ButtonIdle {
			continue
		}
		wasPressed := btn.state == ButtonPressed
		btn.state = ButtonIdle

		if btn.OnRelease != nil {
			btn.OnRelease()
		}
		if wasPressed && btn.Contains(x, y) && btn.OnClick != nil {
			btn.OnClick()
		}
	}
}

// DispatchMove 派发移动：移出区域的按下态按钮转为 DragOut，不触发回调
func (r *Registry) DispatchMove(x, y int) {
	for _, btn := range r.buttons {
		if btn.state == ButtonPressed && !btn.Contains(x, y) {
			btn.state = ButtonDragOut
		}
	}
}

// Reset 清空所有按钮状态（切换界面时调用，避免跨界面手势残留）
func (r *Registry) Reset() {
	for _, btn := range r.buttons {
		btn.state = ButtonIdle
	}
}

// Buttons 已注册按钮列表（按注册顺序）
func (r *Registry) Buttons() []*Button {
	return r.buttons
}
