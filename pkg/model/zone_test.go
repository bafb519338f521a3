package model

import "testing"

func TestProvinceWorksDuringHour(t *testing.T) {
	tests := []struct {
		name  string
		start int
		end   int
		hour  int
		works bool
	}{
		{"起始整点在岗", 7, 20, 7, true},
		{"中间小时在岗", 7, 20, 12, true},
		{"结束小时不在岗", 7, 20, 20, false},
		{"起始前不在岗", 7, 20, 6, false},
		{"全天哨兵-午夜", 0, 24, 0, true},
		{"全天哨兵-深夜", 0, 24, 23, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Province{WorkStartTime: tt.start, WorkEndTime: tt.end}
			if got := p.WorksDuringHour(tt.hour); got != tt.works {
				t.Errorf("WorksDuringHour(%d) = %v, want %v", tt.hour, got, tt.works)
			}
		})
	}
}

func TestProvinceWindow(t *testing.T) {
	p := &Province{WorkStartTime: 9, WorkEndTime: 18}
	w := p.Window()
	if w.Start != 9 || w.End != 18 {
		t.Errorf("Window() = [%d, %d), want [9, 18)", w.Start, w.End)
	}
	if !w.Contains(9) || w.Contains(18) {
		t.Error("窗口应为左闭右开区间")
	}
}
