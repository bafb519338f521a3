package planner

import (
	"github.com/google/uuid"

	"github.com/callplan/callplan/pkg/model"
)

// Input 一次计算所需的全部输入
type Input struct {
	ZoneID    uuid.UUID
	DayType   model.DayType
	Provinces []*model.Province
	Volumes   []*model.CallVolumePoint
	Params    model.SystemParameters
}

// BuildPlan 执行完整的排班计算：按省份生成班次清单，再对工作时段内的
// 每个小时测算需求、按比例分配坐席，并从班次清单投影出该小时的在岗视图。
// 纯函数：相同输入产出完全一致的 Plan。
func BuildPlan(in Input) *model.Plan {
	params := in.Params.Normalize()

	plan := &model.Plan{
		ZoneID:     in.ZoneID,
		DayType:    in.DayType,
		Parameters: params,
	}
	if len(in.Provinces) == 0 {
		return plan
	}

	volumes := make(map[int]int, len(in.Volumes))
	for _, v := range in.Volumes {
		if v != nil && v.Hour >= 0 && v.Hour <= 23 {
			volumes[v.Hour] = v.Calls
		}
	}

	// 班次清单每省只生成一次，逐小时视图全部由它过滤派生
	rosters := make(map[uuid.UUID][]model.OperatorShift, len(in.Provinces))
	for _, p := range in.Provinces {
		shifts := GenerateShifts(p, p.Operators, params.AttendanceDuration)
		rosters[p.ID] = shifts
		plan.Rosters = append(plan.Rosters, model.ProvinceRoster{
			ProvinceID:   p.ID,
			ProvinceName: p.Name,
			Shifts:       shifts,
		})
	}

	lo, hi := workingRange(in.Provinces)
	for h := lo; h < hi; h++ {
		needed := OperatorsNeeded(volumes[h], params.AverageResponseRate)
		alloc := Distribute(needed, in.Provinces, []int{h})

		period := model.DistributionPeriod{
			Hour:       h,
			CallVolume: volumes[h],
			Needed:     needed,
		}
		for _, p := range in.Provinces {
			if !p.WorksDuringHour(h) {
				continue
			}
			count := alloc[p.ID]
			active := ActiveShifts(rosters[p.ID], h, count)
			period.Provinces = append(period.Provinces, model.ProvinceDistribution{
				ProvinceID:   p.ID,
				ProvinceName: p.Name,
				Operators:    count,
				BreakMinutes: breakLoad(active, h, params.StandardBreakTime),
				Shifts:       active,
			})
			period.Assigned += count
		}
		if needed > period.Assigned {
			period.Unmet = needed - period.Assigned
		}
		plan.UnmetDemand += period.Unmet
		plan.Periods = append(plan.Periods, period)
	}

	return plan
}

// Adjustments 人工调整：小时 → 省份 → 覆盖后的坐席数
type Adjustments map[int]map[uuid.UUID]int

// ApplyAdjustments 将人工调整以纯投影方式套用到已计算的 Plan 上。
// 调整只在既有班次清单内重新选取子集，绝不生成新的班次时间；
// 原 Plan 不被修改，返回调整后的副本。
func ApplyAdjustments(plan *model.Plan, adj Adjustments) *model.Plan {
	if plan == nil {
		return nil
	}

	rosters := make(map[uuid.UUID][]model.OperatorShift, len(plan.Rosters))
	for _, r := range plan.Rosters {
		rosters[r.ProvinceID] = r.Shifts
	}

	out := *plan
	out.Periods = make([]model.DistributionPeriod, len(plan.Periods))
	out.UnmetDemand = 0
	for i, period := range plan.Periods {
		next := period
		next.Provinces = make([]model.ProvinceDistribution, len(period.Provinces))
		next.Assigned = 0

		overrides := adj[period.Hour]
		for j, pd := range period.Provinces {
			count := pd.Operators
			if v, ok := overrides[pd.ProvinceID]; ok && v >= 0 {
				count = v
			}
			active := ActiveShifts(rosters[pd.ProvinceID], period.Hour, count)
			next.Provinces[j] = model.ProvinceDistribution{
				ProvinceID:   pd.ProvinceID,
				ProvinceName: pd.ProvinceName,
				Operators:    count,
				BreakMinutes: breakLoad(active, period.Hour, plan.Parameters.StandardBreakTime),
				Shifts:       active,
			}
			next.Assigned += count
		}
		next.Unmet = 0
		if next.Needed > next.Assigned {
			next.Unmet = next.Needed - next.Assigned
		}
		out.UnmetDemand += next.Unmet
		out.Periods[i] = next
	}

	return &out
}

// breakLoad 估算一组在岗班次在指定小时内的休息总时长（分钟）
func breakLoad(shifts []model.OperatorShift, hour, standardBreak int) int {
	total := 0
	for _, s := range shifts {
		if ShiftOnBreakDuringHour(s, hour) {
			total += standardBreak
		}
	}
	return total
}

// workingRange 返回所有省份工作时段的并集范围 [lo, hi)
func workingRange(provinces []*model.Province) (int, int) {
	lo, hi := 24, 0
	for _, p := range provinces {
		if p.WorksFullDay() {
			return 0, 24
		}
		if p.WorkStartTime < lo {
			lo = p.WorkStartTime
		}
		if p.WorkEndTime > hi {
			hi = p.WorkEndTime
		}
	}
	if lo >= hi {
		return 0, 0
	}
	return lo, hi
}
