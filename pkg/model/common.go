// Package model 定义话务排班系统的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// DayType 日期类型
type DayType string

const (
	DayTypeRegular DayType = "regular" // 平日
	DayTypeHoliday DayType = "holiday" // 节假日
)

// IsValid 检查日期类型是否合法
func (d DayType) IsValid() bool {
	return d == DayTypeRegular || d == DayTypeHoliday
}

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// HourRange 以整点小时表示的半开区间 [Start, End)
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains 检查区间是否包含某个小时
func (hr HourRange) Contains(h int) bool {
	return h >= hr.Start && h < hr.End
}
