// Package export 提供排班结果的电子表格导出
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/callplan/callplan/pkg/model"
)

const distributionSheet = "分配表"

// WritePlan 将 Plan 渲染为 xlsx 工作簿并写入 w。
// 首个工作表为逐小时分配表，其后每个省份一张班次清单表。
func WritePlan(w io.Writer, plan *model.Plan) error {
	if plan == nil {
		return fmt.Errorf("导出失败: 计划为空")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeDistributionSheet(f, plan); err != nil {
		return err
	}
	for _, roster := range plan.Rosters {
		if err := writeRosterSheet(f, roster); err != nil {
			return err
		}
	}

	// excelize 默认创建的 Sheet1 重命名为分配表后即为首表
	idx, err := f.GetSheetIndex(distributionSheet)
	if err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("写出工作簿失败: %w", err)
	}
	return nil
}

// writeDistributionSheet 渲染逐小时分配表
func writeDistributionSheet(f *excelize.File, plan *model.Plan) error {
	if err := f.SetSheetName("Sheet1", distributionSheet); err != nil {
		return fmt.Errorf("创建分配表失败: %w", err)
	}

	// 省份列按首个周期内的出现顺序排列
	provinceOrder := make([]string, 0)
	seen := make(map[string]bool)
	for _, period := range plan.Periods {
		for _, pd := range period.Provinces {
			name := provinceLabel(pd)
			if !seen[name] {
				seen[name] = true
				provinceOrder = append(provinceOrder, name)
			}
		}
	}

	headers := append([]string{"时段", "话务量", "所需坐席", "已分配", "未满足"}, provinceOrder...)
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(distributionSheet, cell, h); err != nil {
			return err
		}
	}

	for row, period := range plan.Periods {
		counts := make(map[string]int, len(period.Provinces))
		for _, pd := range period.Provinces {
			counts[provinceLabel(pd)] = pd.Operators
		}

		values := []interface{}{
			fmt.Sprintf("%02d:00-%02d:00", period.Hour, (period.Hour+1)%24),
			period.CallVolume,
			period.Needed,
			period.Assigned,
			period.Unmet,
		}
		for _, name := range provinceOrder {
			values = append(values, counts[name])
		}

		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(distributionSheet, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeRosterSheet 渲染单个省份的班次清单
func writeRosterSheet(f *excelize.File, roster model.ProvinceRoster) error {
	name := roster.ProvinceName
	if name == "" {
		name = roster.ProvinceID.String()[:8]
	}
	sheet := fmt.Sprintf("班次-%s", name)

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("创建班次表失败: %w", err)
	}

	headers := []string{"班次号", "上班", "下班", "时长(分钟)", "休息1", "休息2", "休息3", "休息4"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for row, s := range roster.Shifts {
		values := []interface{}{
			s.ShiftID, s.StartTime, s.EndTime, s.Duration,
			s.Breaks[0], s.Breaks[1], s.Breaks[2], s.Breaks[3],
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}

// provinceLabel 分配表中省份列的表头
func provinceLabel(pd model.ProvinceDistribution) string {
	if pd.ProvinceName != "" {
		return pd.ProvinceName
	}
	return pd.ProvinceID.String()[:8]
}
