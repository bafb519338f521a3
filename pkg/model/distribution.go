// Package model 定义话务排班系统的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// BreakSchedule 单个班次的四段休息窗口，格式 "HH:MM-HH:MM"
type BreakSchedule [4]string

// OperatorShift 生成的坐席班次（派生实体，不落库时无独立身份）
type OperatorShift struct {
	ShiftID   int           `json:"shift_id"`   // 省内 1 起始的顺序号
	StartTime string        `json:"start_time"` // HH:MM
	EndTime   string        `json:"end_time"`   // HH:MM，可跨午夜
	Duration  int           `json:"duration"`   // 分钟
	Breaks    BreakSchedule `json:"breaks"`
}

// ProvinceDistribution 某小时内一个省份的坐席分配
type ProvinceDistribution struct {
	ProvinceID   uuid.UUID       `json:"province_id"`
	ProvinceName string          `json:"province_name,omitempty"`
	Operators    int             `json:"operators"`     // 分配的坐席数
	BreakMinutes int             `json:"break_minutes"` // 该小时内的休息时长估计（分钟）
	Shifts       []OperatorShift `json:"operator_shifts"`
}

// DistributionPeriod 一天中的一个小时及其分配结果
type DistributionPeriod struct {
	Hour       int                    `json:"hour"` // [0,23]
	CallVolume int                    `json:"call_volume"`
	Needed     int                    `json:"needed"`   // 该小时所需坐席总数
	Assigned   int                    `json:"assigned"` // 实际分配的坐席总数
	Unmet      int                    `json:"unmet"`    // 超出总编制而放弃的需求
	Provinces  []ProvinceDistribution `json:"provinces"`
}

// ProvinceRoster 一个省份的完整班次清单
type ProvinceRoster struct {
	ProvinceID   uuid.UUID       `json:"province_id"`
	ProvinceName string          `json:"province_name,omitempty"`
	Shifts       []OperatorShift `json:"shifts"`
}

// Plan 一次完整计算的产物：逐小时分配表 + 各省班次清单
type Plan struct {
	ZoneID      uuid.UUID            `json:"zone_id"`
	DayType     DayType              `json:"day_type"`
	Parameters  SystemParameters     `json:"parameters"`
	Periods     []DistributionPeriod `json:"periods"`
	Rosters     []ProvinceRoster     `json:"rosters"`
	UnmetDemand int                  `json:"unmet_demand"` // 全天未满足需求合计
}

// DistributionRecord 已保存的分配快照（按区域、日期类型、日历日期持久化）
type DistributionRecord struct {
	BaseModel
	ZoneID   uuid.UUID `json:"zone_id" db:"zone_id"`
	DayType  DayType   `json:"day_type" db:"day_type"`
	PlanDate string    `json:"plan_date" db:"plan_date"` // YYYY-MM-DD
	Payload  []byte    `json:"-" db:"payload"`           // 序列化后的 Plan
	SavedBy  string    `json:"saved_by,omitempty" db:"saved_by"`
	SavedAt  time.Time `json:"saved_at" db:"saved_at"`
}
