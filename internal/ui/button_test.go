package ui

import "testing"

type callCounter struct {
	click, press, release int
}

func (c *callCounter) register(reg *Registry, x1, y1, x2, y2 int) *Button {
	return reg.Add(x1, y1, x2, y2,
		func() { c.click++ },
		func() { c.press++ },
		func() { c.release++ })
}

func TestClickInsideButton(t *testing.T) {
	reg := &Registry{}
	var c callCounter
	btn := c.register(reg, 10, 10, 100, 100)

	reg.DispatchPress(50, 50)
	if !btn.Pressed() || c.press != 1 {
		t.Fatalf("按下未生效: state=%v press=%d", btn.State(), c.press)
	}

	reg.DispatchRelease(50, 50)
	if btn.State() != ButtonIdle {
		t.Fatalf("松开后状态未复位: %v", btn.State())
	}
	if c.release != 1 || c.click != 1 {
		t.Fatalf("回调计数错误: release=%d click=%d", c.release, c.click)
	}
}

func TestOverlapFirstMatchWins(t *testing.T) {
	reg := &Registry{}
	var a, b callCounter
	btnA := a.register(reg, 0, 0, 100, 100)
	btnB := b.register(reg, 50, 50, 150, 150)

	// 重叠区域：先注册者独占本次手势
	reg.DispatchPress(75, 75)
	if !btnA.Pressed() || a.press != 1 {
		t.Fatal("A 应获得按下")
	}
	if btnB.Pressed() || b.press != 0 {
		t.Fatal("B 不应收到按下")
	}

	reg.DispatchRelease(75, 75)
	if a.click != 1 || b.click != 0 || b.release != 0 {
		t.Fatalf("回调计数错误: a=%+v b=%+v", a, b)
	}
}

func TestDragOutCancelsClickKeepsRelease(t *testing.T) {
	reg := &Registry{}
	var c callCounter
	btn := c.register(reg, 0, 0, 100, 100)

	reg.DispatchPress(50, 50)
	reg.DispatchMove(200, 200)
	if btn.Pressed() {
		t.Fatal("移出区域后按下态应清除")
	}
	if btn.State() != ButtonDragOut {
		t.Fatalf("应进入 DragOut 态: %v", btn.State())
	}
	if c.release != 0 {
		t.Fatal("移动不应触发任何回调")
	}

	reg.DispatchRelease(200, 200)
	if c.release != 1 {
		t.Fatal("移出后松开仍应触发 release")
	}
	if c.click != 0 {
		t.Fatal("移出后松开不应触发 click")
	}
	if btn.State() != ButtonIdle {
		t.Fatalf("松开后状态未复位: %v", btn.State())
	}
}

func TestDragOutThenBackInNoClick(t *testing.T) {
	reg := &Registry{}
	var c callCounter
	c.register(reg, 0, 0, 100, 100)

	// 移出再移回：视觉取消不可逆，松开在区域内也不算点击
	reg.DispatchPress(50, 50)
	reg.DispatchMove(200, 200)
	reg.DispatchMove(50, 50)
	reg.DispatchRelease(50, 50)

	if c.click != 0 || c.release != 1 {
		t.Fatalf("回调计数错误: %+v", c)
	}
}

func TestContainsInclusiveEdges(t *testing.T) {
	btn := &Button{X1: 10, Y1: 20, X2: 100, Y2: 200}
	for _, p := range [][2]int{{10, 20}, {100, 200}, {10, 200}, {100, 20}} {
		if !btn.Contains(p[0], p[1]) {
			t.Errorf("边界点 %v 应命中", p)
		}
	}
	for _, p := range [][2]int{{9, 20}, {101, 200}, {10, 19}, {100, 201}} {
		if btn.Contains(p[0], p[1]) {
			t.Errorf("区域外点 %v 不应命中", p)
		}
	}
}

func TestPressOutsideAllButtons(t *testing.T) {
	reg := &Registry{}
	var c callCounter
	c.register(reg, 0, 0, 100, 100)

	reg.DispatchPress(150, 150)
	reg.DispatchRelease(150, 150)
	if c.press != 0 || c.release != 0 || c.click != 0 {
		t.Fatalf("区域外手势不应触发回调: %+v", c)
	}
}

func TestRegistryReset(t *testing.T) {
	reg := &Registry{}
	var c callCounter
	btn := c.register(reg, 0, 0, 100, 100)

	reg.DispatchPress(50, 50)
	reg.Reset()
	if btn.State() != ButtonIdle {
		t.Fatal("Reset 后状态应复位")
	}

	// 残留手势的松开不再触发回调
	reg.DispatchRelease(50, 50)
	if c.release != 0 || c.click != 0 {
		t.Fatalf("Reset 后不应再有回调: %+v", c)
	}
}
