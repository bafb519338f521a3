package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callplan/callplan/pkg/model"
	"github.com/callplan/callplan/pkg/planner"
)

// testPlan 构造一个两省份的已计算计划
func testPlan(t *testing.T) (*model.Plan, uuid.UUID, uuid.UUID) {
	t.Helper()
	zoneID := uuid.New()
	provA := &model.Province{
		BaseModel:     model.BaseModel{ID: uuid.New()},
		ZoneID:        zoneID,
		Name:          "河北",
		WorkStartTime: 7,
		WorkEndTime:   22,
		Operators:     6,
	}
	provB := &model.Province{
		BaseModel:     model.BaseModel{ID: uuid.New()},
		ZoneID:        zoneID,
		Name:          "山西",
		WorkStartTime: 7,
		WorkEndTime:   22,
		Operators:     4,
	}

	volumes := make([]*model.CallVolumePoint, 0, 24)
	for h := 0; h < 24; h++ {
		volumes = append(volumes, &model.CallVolumePoint{
			ZoneID: zoneID, DayType: model.DayTypeRegular, Hour: h, Calls: 400,
		})
	}

	plan := planner.BuildPlan(planner.Input{
		ZoneID:    zoneID,
		DayType:   model.DayTypeRegular,
		Provinces: []*model.Province{provA, provB},
		Volumes:   volumes,
		Params:    model.DefaultParameters(),
	})
	require.NotEmpty(t, plan.Periods)
	return plan, provA.ID, provB.ID
}

func TestPlanAdjust(t *testing.T) {
	h := NewPlanHandler(nil, nil, nil, nil)
	plan, provA, _ := testPlan(t)

	hour := plan.Periods[0].Hour
	body, err := json.Marshal(AdjustRequest{
		Plan: plan,
		Adjustments: planner.Adjustments{
			hour: {provA: 1},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plan/adjust", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Adjust(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var adjusted model.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &adjusted))
	require.Equal(t, len(plan.Periods), len(adjusted.Periods))

	for _, pd := range adjusted.Periods[0].Provinces {
		if pd.ProvinceID == provA {
			assert.Equal(t, 1, pd.Operators, "province A should be capped at the adjusted count")
		}
	}
}

func TestPlanAdjustValidation(t *testing.T) {
	h := NewPlanHandler(nil, nil, nil, nil)
	plan, provA, _ := testPlan(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing plan", `{"adjustments":{}}`},
		{"negative count", fmt.Sprintf(`{"plan":%s,"adjustments":{"9":{"%s":-1}}}`, mustJSON(t, plan), provA)},
		{"hour out of range", fmt.Sprintf(`{"plan":%s,"adjustments":{"24":{"%s":1}}}`, mustJSON(t, plan), provA)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/plan/adjust", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Adjust(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPlanAdjustOverCapacity(t *testing.T) {
	h := NewPlanHandler(nil, nil, nil, nil)
	plan, provA, _ := testPlan(t)

	// 省份A编制为6个班次，调整为7超出班次清单
	hour := plan.Periods[0].Hour
	body, err := json.Marshal(AdjustRequest{
		Plan: plan,
		Adjustments: planner.Adjustments{
			hour: {provA: 7},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plan/adjust", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Adjust(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "CAPACITY_EXCEEDED")
}

func TestPlanCalculateValidation(t *testing.T) {
	h := NewPlanHandler(nil, nil, nil, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad zone id", `{"zone_id":"not-a-uuid","day_type":"regular"}`, "INVALID_INPUT"},
		{"bad day type", fmt.Sprintf(`{"zone_id":"%s","day_type":"weekend"}`, uuid.New()), "INVALID_DAY_TYPE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/plan/calculate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Calculate(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestPlanExportValidation(t *testing.T) {
	h := NewPlanHandler(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plan/export?zone_id=&day_type=regular", nil)
	rec := httptest.NewRecorder()
	h.Export(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
