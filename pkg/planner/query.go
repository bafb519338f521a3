package planner

import (
	"github.com/callplan/callplan/pkg/model"
)

// ShiftActiveDuringHour 检查班次在指定小时是否在岗。
// 按整点粒度判断：startHour <= h < endHour，起始分钟忽略
// （07:45 上班的坐席在 7 点这一小时即视为在岗）。跨午夜班次按回绕处理。
func ShiftActiveDuringHour(s model.OperatorShift, hour int) bool {
	startHour := clockHour(s.StartTime)
	endHour := clockHour(s.EndTime)

	if startHour < endHour {
		return hour >= startHour && hour < endHour
	}
	if startHour > endHour {
		// 跨午夜
		return hour >= startHour || hour < endHour
	}
	return false
}

// ShiftOnBreakDuringHour 检查班次在指定小时是否有休息窗口开始。
// 跨整点的休息窗口只计入其开始的那个小时。
func ShiftOnBreakDuringHour(s model.OperatorShift, hour int) bool {
	for _, window := range s.Breaks {
		if window == "" {
			continue
		}
		if clockHour(window) == hour {
			return true
		}
	}
	return false
}

// ActiveShifts 过滤出在指定小时在岗的班次，最多保留 limit 个。
// limit < 0 表示不限制。返回的切片保持班次号升序。
func ActiveShifts(shifts []model.OperatorShift, hour, limit int) []model.OperatorShift {
	if limit == 0 {
		return nil
	}
	active := make([]model.OperatorShift, 0, len(shifts))
	for _, s := range shifts {
		if !ShiftActiveDuringHour(s, hour) {
			continue
		}
		active = append(active, s)
		if limit > 0 && len(active) == limit {
			break
		}
	}
	return active
}

// clockHour 解析 "HH:MM" 或 "HH:MM-HH:MM" 的起始小时，解析失败返回 -1
func clockHour(clock string) int {
	if len(clock) < 2 {
		return -1
	}
	h := 0
	for i := 0; i < 2; i++ {
		c := clock[i]
		if c < '0' || c > '9' {
			return -1
		}
		h = h*10 + int(c-'0')
	}
	if h > 23 {
		return -1
	}
	return h
}
