// Package planner 提供话务排班的核心计算：坐席需求测算、按省份比例分配、
// 班次与休息时段生成。所有函数均为纯函数，不做 I/O，相同输入产生完全一致的输出。
package planner

import (
	"github.com/google/uuid"

	"github.com/callplan/callplan/pkg/model"
)

// OperatorsNeeded 根据话务量与单坐席接话率测算所需坐席数，向上取整。
// responseRate <= 0 时返回 0（防止除零，而非报错）。
func OperatorsNeeded(callVolume, responseRate int) int {
	if responseRate <= 0 || callVolume <= 0 {
		return 0
	}
	return (callVolume + responseRate - 1) / responseRate
}

// Distribute 将所需坐席总数按编制比例分配到各省份。
//
// 规则：
//  1. 仅考虑工作时段与 activeHours 有交集的省份；
//  2. 需求不小于总编制时，各省按编制满额分配（超出部分放弃）；
//  3. 否则按 ceil(totalNeeded × operators/capacity) 取份额并以编制封顶；
//  4. 向上取整可能超发，超发时反复从当前分配最多的省份递减，
//     同额省份按输入顺序取先出现者，已获分配的省份不会被减到 1 以下。
func Distribute(totalNeeded int, provinces []*model.Province, activeHours []int) map[uuid.UUID]int {
	result := make(map[uuid.UUID]int)
	if totalNeeded <= 0 || len(provinces) == 0 {
		return result
	}

	working := workingProvinces(provinces, activeHours)
	if len(working) == 0 {
		return result
	}

	capacity := 0
	for _, p := range working {
		capacity += p.Operators
	}
	if capacity == 0 {
		return result
	}

	// 需求达到或超过总编制：满额分配，多余需求放弃
	if totalNeeded >= capacity {
		for _, p := range working {
			result[p.ID] = p.Operators
		}
		return result
	}

	assigned := make([]int, len(working))
	sum := 0
	for i, p := range working {
		share := (totalNeeded*p.Operators + capacity - 1) / capacity
		if share > p.Operators {
			share = p.Operators
		}
		assigned[i] = share
		sum += share
	}

	// 消解取整造成的超发
	for sum > totalNeeded {
		idx := -1
		for i, a := range assigned {
			if a > 1 && (idx == -1 || a > assigned[idx]) {
				idx = i
			}
		}
		if idx == -1 {
			// 所有省份都已降到 1，无法继续递减
			break
		}
		cut := assigned[idx] - 1
		if excess := sum - totalNeeded; cut > excess {
			cut = excess
		}
		assigned[idx] -= cut
		sum -= cut
	}

	for i, p := range working {
		result[p.ID] = assigned[i]
	}
	return result
}

// workingProvinces 过滤出在 activeHours 中任一小时处于工作时段的省份，保持输入顺序
func workingProvinces(provinces []*model.Province, activeHours []int) []*model.Province {
	working := make([]*model.Province, 0, len(provinces))
	for _, p := range provinces {
		for _, h := range activeHours {
			if p.WorksDuringHour(h) {
				working = append(working, p)
				break
			}
		}
	}
	return working
}
