package planner

import (
	"testing"

	"github.com/google/uuid"

	"github.com/callplan/callplan/pkg/model"
)

func TestOperatorsNeeded(t *testing.T) {
	tests := []struct {
		name     string
		volume   int
		rate     int
		expected int
	}{
		{"整除", 160, 80, 2},
		{"向上取整", 161, 80, 3},
		{"不足一人", 1, 80, 1},
		{"零话务量", 0, 80, 0},
		{"零接话率", 100, 0, 0},
		{"负接话率", 100, -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OperatorsNeeded(tt.volume, tt.rate); got != tt.expected {
				t.Errorf("OperatorsNeeded(%d, %d) = %d, want %d", tt.volume, tt.rate, got, tt.expected)
			}
		})
	}
}

func newProvince(name string, start, end, operators int) *model.Province {
	return &model.Province{
		BaseModel:     model.BaseModel{ID: uuid.New()},
		Name:          name,
		WorkStartTime: start,
		WorkEndTime:   end,
		Operators:     operators,
	}
}

func allDayHours() []int {
	hours := make([]int, 24)
	for i := range hours {
		hours[i] = i
	}
	return hours
}

func TestDistribute_ExactCapacity(t *testing.T) {
	a := newProvince("A", 0, 24, 6)
	b := newProvince("B", 0, 24, 4)

	// 需求恰好等于总编制，各省满额
	result := Distribute(10, []*model.Province{a, b}, allDayHours())

	if result[a.ID] != 6 {
		t.Errorf("Province A should get 6, got %d", result[a.ID])
	}
	if result[b.ID] != 4 {
		t.Errorf("Province B should get 4, got %d", result[b.ID])
	}
}

func TestDistribute_Proportional(t *testing.T) {
	a := newProvince("A", 0, 24, 6)
	b := newProvince("B", 0, 24, 4)

	// 容量10 > 需求5：A=ceil(5×0.6)=3, B=ceil(5×0.4)=2，无需消解
	result := Distribute(5, []*model.Province{a, b}, allDayHours())

	if result[a.ID] != 3 {
		t.Errorf("Province A should get 3, got %d", result[a.ID])
	}
	if result[b.ID] != 2 {
		t.Errorf("Province B should get 2, got %d", result[b.ID])
	}
}

func TestDistribute_OverCapacity(t *testing.T) {
	a := newProvince("A", 0, 24, 6)
	b := newProvince("B", 0, 24, 4)

	// 需求超出总编制：满额分配，超出部分放弃
	result := Distribute(100, []*model.Province{a, b}, allDayHours())

	if result[a.ID] != a.Operators || result[b.ID] != b.Operators {
		t.Errorf("over-capacity demand should assign full headcount, got A=%d B=%d",
			result[a.ID], result[b.ID])
	}
}

func TestDistribute_Reconciliation(t *testing.T) {
	// 取整超发的场景：需求7，编制 5/5/5
	a := newProvince("A", 0, 24, 5)
	b := newProvince("B", 0, 24, 5)
	c := newProvince("C", 0, 24, 5)
	provinces := []*model.Province{a, b, c}

	result := Distribute(7, provinces, allDayHours())

	sum := result[a.ID] + result[b.ID] + result[c.ID]
	if sum != 7 {
		t.Errorf("reconciled sum should equal demand 7, got %d", sum)
	}
	for _, p := range provinces {
		if result[p.ID] < 1 {
			t.Errorf("province %s reduced below 1: %d", p.Name, result[p.ID])
		}
		if result[p.ID] > p.Operators {
			t.Errorf("province %s exceeds headcount: %d", p.Name, result[p.ID])
		}
	}

	// 同额省份按输入顺序消解：重复计算必须得到完全一致的结果
	for i := 0; i < 10; i++ {
		again := Distribute(7, provinces, allDayHours())
		for _, p := range provinces {
			if again[p.ID] != result[p.ID] {
				t.Fatalf("distribution is not deterministic for %s: %d vs %d",
					p.Name, again[p.ID], result[p.ID])
			}
		}
	}
}

func TestDistribute_NeverExceedsDemandOrCapacity(t *testing.T) {
	provinces := []*model.Province{
		newProvince("A", 7, 22, 9),
		newProvince("B", 8, 20, 3),
		newProvince("C", 0, 24, 7),
	}
	capacity := 9 + 3 + 7

	for needed := 0; needed <= capacity+5; needed++ {
		result := Distribute(needed, provinces, []int{10})
		sum := 0
		for _, p := range provinces {
			if result[p.ID] > p.Operators {
				t.Fatalf("needed=%d: province %s exceeds headcount", needed, p.Name)
			}
			sum += result[p.ID]
		}
		if sum > capacity {
			t.Fatalf("needed=%d: total assignment %d exceeds capacity %d", needed, sum, capacity)
		}
		// 需求小于在岗省份数时，每省保底 1 人会造成不可避免的少量超发
		if needed >= len(provinces) && needed < capacity && sum > needed {
			t.Fatalf("needed=%d: total assignment %d overshoots demand", needed, sum)
		}
	}
}

func TestDistribute_WindowFiltering(t *testing.T) {
	morning := newProvince("Morning", 7, 12, 5)
	evening := newProvince("Evening", 14, 22, 5)

	// 上午时段只有 Morning 在岗
	result := Distribute(3, []*model.Province{morning, evening}, []int{9})

	if _, ok := result[evening.ID]; ok {
		t.Error("province outside its working window should not be assigned")
	}
	if result[morning.ID] != 3 {
		t.Errorf("Morning should get 3, got %d", result[morning.ID])
	}
}

func TestDistribute_DegenerateInputs(t *testing.T) {
	a := newProvince("A", 0, 24, 6)

	if got := Distribute(0, []*model.Province{a}, allDayHours()); len(got) != 0 {
		t.Errorf("zero demand should return empty mapping, got %v", got)
	}
	if got := Distribute(5, nil, allDayHours()); len(got) != 0 {
		t.Errorf("empty province list should return empty mapping, got %v", got)
	}
	if got := Distribute(5, []*model.Province{a}, []int{}); len(got) != 0 {
		t.Errorf("empty active hours should return empty mapping, got %v", got)
	}

	zero := newProvince("Zero", 0, 24, 0)
	if got := Distribute(5, []*model.Province{zero}, allDayHours()); len(got) != 0 {
		t.Errorf("zero-headcount provinces should yield empty mapping, got %v", got)
	}
}
