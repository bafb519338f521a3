package export

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/callplan/callplan/pkg/model"
)

func samplePlan() *model.Plan {
	pid := uuid.New()
	return &model.Plan{
		ZoneID:     uuid.New(),
		DayType:    model.DayTypeRegular,
		Parameters: model.DefaultParameters(),
		Periods: []model.DistributionPeriod{
			{
				Hour:       7,
				CallVolume: 400,
				Needed:     5,
				Assigned:   5,
				Unmet:      0,
				Provinces: []model.ProvinceDistribution{
					{ProvinceID: pid, ProvinceName: "河北", Operators: 5},
				},
			},
			{
				Hour:       8,
				CallVolume: 800,
				Needed:     10,
				Assigned:   8,
				Unmet:      2,
				Provinces: []model.ProvinceDistribution{
					{ProvinceID: pid, ProvinceName: "河北", Operators: 8},
				},
			},
		},
		Rosters: []model.ProvinceRoster{
			{
				ProvinceID:   pid,
				ProvinceName: "河北",
				Shifts: []model.OperatorShift{
					{
						ShiftID:   1,
						StartTime: "07:00",
						EndTime:   "14:00",
						Duration:  420,
						Breaks:    model.BreakSchedule{"08:24-08:34", "09:48-09:58", "11:12-11:22", "12:36-12:46"},
					},
				},
			},
		},
		UnmetDemand: 2,
	}
}

func TestWritePlan(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlan(&buf, samplePlan()); err != nil {
		t.Fatalf("WritePlan failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("workbook should be readable: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %v", sheets)
	}
	if sheets[0] != "分配表" {
		t.Errorf("first sheet = %q, want 分配表", sheets[0])
	}
	if sheets[1] != "班次-河北" {
		t.Errorf("second sheet = %q, want 班次-河北", sheets[1])
	}

	// 分配表首行数据
	got, err := f.GetCellValue("分配表", "A2")
	if err != nil {
		t.Fatalf("read A2: %v", err)
	}
	if got != "07:00-08:00" {
		t.Errorf("A2 = %q, want 07:00-08:00", got)
	}
	got, _ = f.GetCellValue("分配表", "E3")
	if got != "2" {
		t.Errorf("unmet cell E3 = %q, want 2", got)
	}
	got, _ = f.GetCellValue("分配表", "F3")
	if got != "8" {
		t.Errorf("province cell F3 = %q, want 8", got)
	}

	// 班次表
	got, _ = f.GetCellValue("班次-河北", "B2")
	if got != "07:00" {
		t.Errorf("shift start B2 = %q, want 07:00", got)
	}
	got, _ = f.GetCellValue("班次-河北", "E2")
	if got != "08:24-08:34" {
		t.Errorf("break cell E2 = %q, want 08:24-08:34", got)
	}
}

func TestWritePlanNil(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlan(&buf, nil); err == nil {
		t.Fatal("expected error for nil plan")
	}
}
