package robot

import (
	"fmt"
	"testing"
)

func TestConvertToRobotSingmaster(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"D", "D"},
		{"D'", "D'"},
		{"D2", "D2"},
		{"U", "x2 D x2"},
		{"F", "x' D x"},
		{"B", "x D x'"},
		{"R", "z D z'"},
		{"L", "z' D z"},
		{"R2", "z D2 z'"},
		{"U R2 F'", "x2 D x2 z D2 z' x' D' x"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := ConvertToRobotSingmaster(tt.in)
		if err != nil {
			t.Errorf("Convert(%q) 出错: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Convert(%q) = %q, 期望 %q", tt.in, got, tt.want)
		}
	}
}

func TestConvertRejectsInvalidTokens(t *testing.T) {
	for _, in := range []string{"M", "U3", "Dx", "q"} {
		if _, err := ConvertToRobotSingmaster(in); err == nil {
			t.Errorf("Convert(%q) 应报错", in)
		}
	}
}

// fakeRotator 记录执行的记号序列
type fakeRotator struct {
	moves []string
	fail  string // 执行到该记号时报错
}

func (f *fakeRotator) RotateFace(face string, turns int, clockwise bool) error {
	token := face
	if turns == 2 {
		token += "2"
	} else if !clockwise {
		token += "'"
	}
	if f.fail != "" && token == f.fail {
		return fmt.Errorf("机构故障")
	}
	f.moves = append(f.moves, token)
	return nil
}

type progressRecord struct {
	current, total int
	move, next     string
	status         string
}

func TestExecuteSolutionCallbacks(t *testing.T) {
	rot := &fakeRotator{}
	var events []progressRecord
	cb := func(current, total int, move, next, status string) {
		events = append(events, progressRecord{current, total, move, next, status})
	}

	// "U" → "x2 D x2"，共 3 步
	done, err := ExecuteSolution(rot, "U", cb, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Fatal("应完整执行")
	}

	wantMoves := []string{"x2", "D", "x2"}
	if len(rot.moves) != len(wantMoves) {
		t.Fatalf("执行序列错误: %v", rot.moves)
	}
	for i, m := range wantMoves {
		if rot.moves[i] != m {
			t.Fatalf("执行序列错误: %v", rot.moves)
		}
	}

	// executing/completed 成对出现，结尾 finished
	if len(events) != 7 {
		t.Fatalf("回调次数错误: %d %v", len(events), events)
	}
	first := events[0]
	if first.current != 1 || first.total != 3 || first.move != "x2" || first.next != "D" || first.status != "executing" {
		t.Fatalf("首个回调错误: %+v", first)
	}
	last := events[len(events)-1]
	if last.status != "finished" || last.current != 3 || last.total != 3 {
		t.Fatalf("结束回调错误: %+v", last)
	}
}

func TestExecuteSolutionStop(t *testing.T) {
	rot := &fakeRotator{}
	stop := make(chan struct{})
	close(stop) // 进入前就已请求停止

	var events []progressRecord
	cb := func(current, total int, move, next, status string) {
		events = append(events, progressRecord{current, total, move, next, status})
	}

	done, err := ExecuteSolution(rot, "U R2", cb, stop)
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Fatal("急停后不应报告完整执行")
	}
	if len(rot.moves) != 0 {
		t.Fatalf("急停后不应执行动作: %v", rot.moves)
	}
	if len(events) != 1 || events[0].status != "stopped" {
		t.Fatalf("应收到 stopped 回调: %v", events)
	}
}

func TestExecuteSolutionHardwareFailure(t *testing.T) {
	rot := &fakeRotator{fail: "D"}
	var statuses []string
	cb := func(current, total int, move, next, status string) {
		statuses = append(statuses, status)
	}

	done, err := ExecuteSolution(rot, "U", cb, nil)
	if err == nil {
		t.Fatal("机构故障应向上传递")
	}
	if done {
		t.Fatal("失败不应报告完整执行")
	}
	if statuses[len(statuses)-1] != "failed" {
		t.Fatalf("应收到 failed 回调: %v", statuses)
	}
}

func TestExecuteSolutionInvalidInput(t *testing.T) {
	if _, err := ExecuteSolution(&fakeRotator{}, "U W", nil, nil); err == nil {
		t.Fatal("无效解法应报错")
	}
}
