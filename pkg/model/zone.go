// Package model 定义话务排班系统的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Zone 区域（共享同一话务队列的省份分组）
type Zone struct {
	BaseModel
	Name     string  `json:"name" db:"name"`
	Code     string  `json:"code" db:"code"`
	Settings JSONMap `json:"settings,omitempty" db:"settings"`
	IsActive bool    `json:"is_active" db:"is_active"`
}

// Province 省份（拥有独立工作时段和坐席编制的排班单元）
type Province struct {
	BaseModel
	ZoneID        uuid.UUID `json:"zone_id" db:"zone_id"`
	Name          string    `json:"name" db:"name"`
	Code          string    `json:"code" db:"code"`
	WorkStartTime int       `json:"work_start_time" db:"work_start_time"` // 整点小时 [0,24]
	WorkEndTime   int       `json:"work_end_time" db:"work_end_time"`     // 整点小时 [0,24]
	Operators     int       `json:"operators" db:"operators"`             // 坐席编制上限
}

// WorksFullDay 检查是否为全天工作的哨兵窗口 (0,24)
func (p *Province) WorksFullDay() bool {
	return p.WorkStartTime == 0 && p.WorkEndTime == 24
}

// WorksDuringHour 检查省份在指定小时是否处于工作时段
func (p *Province) WorksDuringHour(h int) bool {
	if p.WorksFullDay() {
		return true
	}
	return p.Window().Contains(h)
}

// Window 返回省份的工作时段
func (p *Province) Window() HourRange {
	return HourRange{Start: p.WorkStartTime, End: p.WorkEndTime}
}

// CallVolumePoint 某小时的话务量数据点
type CallVolumePoint struct {
	BaseModel
	ZoneID  uuid.UUID `json:"zone_id" db:"zone_id"`
	DayType DayType   `json:"day_type" db:"day_type"`
	Hour    int       `json:"hour" db:"hour"`   // [0,23]
	Calls   int       `json:"calls" db:"calls"` // 该小时的呼入量
}

// SystemParameters 全局调优参数
type SystemParameters struct {
	AttendanceDuration  int `json:"attendance_duration" db:"attendance_duration"`     // 每班出勤时长（分钟）
	StandardBreakTime   int `json:"standard_break_time" db:"standard_break_time"`     // 每段标准休息时长（分钟）
	AverageResponseRate int `json:"average_response_rate" db:"average_response_rate"` // 单坐席每小时可接话量
}

// 参数默认值
const (
	DefaultAttendanceDuration  = 420
	DefaultStandardBreakTime   = 10
	DefaultAverageResponseRate = 80
)

// DefaultParameters 返回默认参数
func DefaultParameters() SystemParameters {
	return SystemParameters{
		AttendanceDuration:  DefaultAttendanceDuration,
		StandardBreakTime:   DefaultStandardBreakTime,
		AverageResponseRate: DefaultAverageResponseRate,
	}
}

// Normalize 将非法参数回填为默认值
func (p SystemParameters) Normalize() SystemParameters {
	if p.AttendanceDuration <= 0 {
		p.AttendanceDuration = DefaultAttendanceDuration
	}
	if p.StandardBreakTime <= 0 {
		p.StandardBreakTime = DefaultStandardBreakTime
	}
	if p.AverageResponseRate <= 0 {
		p.AverageResponseRate = DefaultAverageResponseRate
	}
	return p
}
