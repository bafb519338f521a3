package planner

import (
	"fmt"

	"github.com/callplan/callplan/pkg/model"
)

const (
	minutesPerDay  = 24 * 60
	staggerMinutes = 15 // 相邻班次的错峰间隔
	breakCount     = 4  // 每班次的休息段数
	breakMinutes   = 10 // 单段休息时长
)

// GenerateShifts 为一个省份生成错峰班次及休息时段。
//
// 第 i 个坐席（i 从 0 起）的上班时间在工作时段起点上推迟 i×15 分钟，
// 推迟后的起始小时到达 work_end_time 的班次不再生成，因此产出的班次数
// 以 operatorCount 为上限而非精确值。下班时间与各休息窗口均按 1440 分钟
// 取模回绕，可跨越午夜。四段休息各 10 分钟，间隔 shiftDuration/5 分钟。
//
// 相同输入总是产出完全一致的班次序列（含 HH:MM 字符串），按班次号升序排列。
func GenerateShifts(province *model.Province, operatorCount, shiftDuration int) []model.OperatorShift {
	if operatorCount <= 0 {
		return nil
	}

	shifts := make([]model.OperatorShift, 0, operatorCount)
	for i := 0; i < operatorCount; i++ {
		offset := i * staggerMinutes
		startHour := province.WorkStartTime + offset/60
		startMinute := offset % 60

		// 工作时段容纳不下这么晚的开始时间，放弃该坐席的班次
		if startHour >= province.WorkEndTime {
			continue
		}

		startTotal := startHour*60 + startMinute
		endTotal := (startTotal + shiftDuration) % minutesPerDay

		shifts = append(shifts, model.OperatorShift{
			ShiftID:   i + 1,
			StartTime: formatClock(startTotal),
			EndTime:   formatClock(endTotal),
			Duration:  shiftDuration,
			Breaks:    breakWindows(startTotal, shiftDuration),
		})
	}
	return shifts
}

// breakWindows 计算四段休息窗口，分别落在班次约 1/5、2/5、3/5、4/5 处
func breakWindows(startTotal, shiftDuration int) model.BreakSchedule {
	var breaks model.BreakSchedule
	interval := shiftDuration / 5
	for k := 0; k < breakCount; k++ {
		breakStart := (startTotal + (k+1)*interval) % minutesPerDay
		breakEnd := (breakStart + breakMinutes) % minutesPerDay
		breaks[k] = fmt.Sprintf("%s-%s", formatClock(breakStart), formatClock(breakEnd))
	}
	return breaks
}

// formatClock 将自零点起的分钟数格式化为 HH:MM
func formatClock(totalMinutes int) string {
	totalMinutes %= minutesPerDay
	if totalMinutes < 0 {
		totalMinutes += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
}
