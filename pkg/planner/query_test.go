package planner

import (
	"testing"

	"github.com/callplan/callplan/pkg/model"
)

func TestShiftActiveDuringHour(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		end    string
		hour   int
		active bool
	}{
		{"起始整点在岗", "07:00", "14:00", 7, true},
		{"中间小时在岗", "07:00", "14:00", 10, true},
		{"结束小时不在岗", "07:00", "14:00", 14, false},
		{"起始前不在岗", "07:00", "14:00", 6, false},
		{"起始分钟忽略", "07:45", "14:45", 7, true},
		{"跨午夜-夜间段", "23:45", "06:45", 23, true},
		{"跨午夜-凌晨段", "23:45", "06:45", 2, true},
		{"跨午夜-结束后", "23:45", "06:45", 6, false},
		{"跨午夜-白天", "23:45", "06:45", 12, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := model.OperatorShift{StartTime: tt.start, EndTime: tt.end}
			if got := ShiftActiveDuringHour(s, tt.hour); got != tt.active {
				t.Errorf("ShiftActiveDuringHour(%s-%s, %d) = %v, want %v",
					tt.start, tt.end, tt.hour, got, tt.active)
			}
		})
	}
}

func TestShiftOnBreakDuringHour(t *testing.T) {
	s := model.OperatorShift{
		StartTime: "07:00",
		EndTime:   "14:00",
		Breaks: model.BreakSchedule{
			"08:24-08:34",
			"09:48-09:58",
			"11:12-11:22",
			"12:36-12:46",
		},
	}

	onBreak := []int{8, 9, 11, 12}
	for _, h := range onBreak {
		if !ShiftOnBreakDuringHour(s, h) {
			t.Errorf("hour %d should be a break hour", h)
		}
	}
	for _, h := range []int{7, 10, 13, 14} {
		if ShiftOnBreakDuringHour(s, h) {
			t.Errorf("hour %d should not be a break hour", h)
		}
	}
}

func TestShiftOnBreakDuringHour_StraddlingWindow(t *testing.T) {
	// 跨整点的休息窗口只计入其开始的小时
	s := model.OperatorShift{
		Breaks: model.BreakSchedule{"08:55-09:05", "", "", ""},
	}

	if !ShiftOnBreakDuringHour(s, 8) {
		t.Error("straddling break should count in its start hour")
	}
	if ShiftOnBreakDuringHour(s, 9) {
		t.Error("straddling break should not count in the following hour")
	}
}

func TestActiveShifts_Truncation(t *testing.T) {
	p := newProvince("A", 7, 22, 6)
	roster := GenerateShifts(p, 6, 420)

	active := ActiveShifts(roster, 8, 3)
	if len(active) != 3 {
		t.Fatalf("expected 3 active shifts after truncation, got %d", len(active))
	}
	// 截取保留班次号最小的前几个
	for i, s := range active {
		if s.ShiftID != i+1 {
			t.Errorf("active[%d].ShiftID = %d, want %d", i, s.ShiftID, i+1)
		}
	}

	if got := ActiveShifts(roster, 8, 0); got != nil {
		t.Errorf("zero limit should return nil, got %v", got)
	}
	if got := ActiveShifts(roster, 8, -1); len(got) != len(roster) {
		t.Errorf("negative limit should return all active shifts, got %d", len(got))
	}
	if got := ActiveShifts(roster, 20, -1); len(got) != 0 {
		t.Errorf("no shift covers hour 20, got %d", len(got))
	}
}
