package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/callplan/callplan/internal/export"
	"github.com/callplan/callplan/internal/metrics"
	"github.com/callplan/callplan/internal/middleware"
	"github.com/callplan/callplan/internal/repository"
	"github.com/callplan/callplan/pkg/errors"
	"github.com/callplan/callplan/pkg/logger"
	"github.com/callplan/callplan/pkg/model"
	"github.com/callplan/callplan/pkg/planner"
)

// PlanHandler 排班计算处理器
type PlanHandler struct {
	provinces     *repository.ProvinceRepository
	volumes       *repository.CallVolumeRepository
	params        *repository.ParametersRepository
	distributions *repository.DistributionRepository
}

// NewPlanHandler 创建排班计算处理器
func NewPlanHandler(
	provinces *repository.ProvinceRepository,
	volumes *repository.CallVolumeRepository,
	params *repository.ParametersRepository,
	distributions *repository.DistributionRepository,
) *PlanHandler {
	return &PlanHandler{
		provinces:     provinces,
		volumes:       volumes,
		params:        params,
		distributions: distributions,
	}
}

// CalculateRequest 排班计算请求
type CalculateRequest struct {
	ZoneID     string                  `json:"zone_id"`
	DayType    string                  `json:"day_type"`
	Parameters *model.SystemParameters `json:"parameters,omitempty"` // 为空时使用系统参数
}

// AdjustRequest 人工调整请求
type AdjustRequest struct {
	Plan        *model.Plan         `json:"plan"`
	Adjustments planner.Adjustments `json:"adjustments"`
}

// SaveRequest 计划保存请求
type SaveRequest struct {
	ZoneID   string      `json:"zone_id"`
	PlanDate string      `json:"plan_date"` // YYYY-MM-DD
	Plan     *model.Plan `json:"plan"`
}

// Calculate 计算指定区域、日期类型的完整排班计划
func (h *PlanHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	zoneID, err := uuid.Parse(req.ZoneID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的区域ID格式"))
		return
	}
	dayType := model.DayType(req.DayType)
	if !dayType.IsValid() {
		respondError(w, errors.New(errors.CodeInvalidDayType, "日期类型必须为 regular 或 holiday"))
		return
	}

	plan, appErr := h.buildPlan(r, zoneID, dayType, req.Parameters)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// Adjust 将人工调整投影到已计算的计划上
func (h *PlanHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Plan == nil {
		respondError(w, errors.InvalidInput("plan", "调整必须附带已计算的计划"))
		return
	}

	ve := &errors.ValidationErrors{}
	for hour, byProvince := range req.Adjustments {
		if hour < 0 || hour > 23 {
			ve.Add("adjustments", "调整小时必须在0到23之间")
		}
		for _, count := range byProvince {
			if count < 0 {
				ve.Add("adjustments", "调整坐席数不能为负数")
			}
		}
	}
	if ve.HasErrors() {
		respondError(w, ve.ToAppError())
		return
	}

	// 调整只能在既有班次清单内选取，不能超出省份编制
	rosterSize := make(map[uuid.UUID]int, len(req.Plan.Rosters))
	for _, roster := range req.Plan.Rosters {
		rosterSize[roster.ProvinceID] = len(roster.Shifts)
	}
	for _, byProvince := range req.Adjustments {
		for provinceID, count := range byProvince {
			if size, ok := rosterSize[provinceID]; ok && count > size {
				respondError(w, errors.CapacityExceeded(count, size).
					WithField("province_id", provinceID.String()))
				return
			}
		}
	}

	adjusted := planner.ApplyAdjustments(req.Plan, req.Adjustments)
	respondJSON(w, http.StatusOK, adjusted)
}

// Save 将计算结果保存为指定日期的分配快照
func (h *PlanHandler) Save(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if req.Plan == nil {
		respondError(w, errors.InvalidInput("plan", "保存必须附带已计算的计划"))
		return
	}
	zoneID, err := uuid.Parse(req.ZoneID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的区域ID格式"))
		return
	}
	if _, err := time.Parse("2006-01-02", req.PlanDate); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "计划日期格式必须为 YYYY-MM-DD"))
		return
	}

	savedBy, _ := middleware.UserFromContext(r.Context())
	record, err := h.distributions.Save(r.Context(), zoneID, req.PlanDate, savedBy, req.Plan)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存分配快照失败"))
		return
	}

	logger.Info().
		Str("zone_id", zoneID.String()).
		Str("plan_date", req.PlanDate).
		Str("saved_by", savedBy).
		Msg("分配快照已保存")
	respondJSON(w, http.StatusCreated, record)
}

// Saved 查询已保存的分配快照。
// 指定 plan_date 时返回单条记录及其计划内容，否则返回记录列表。
func (h *PlanHandler) Saved(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	zoneID, appErr := queryUUID(r, "zone_id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	if zoneID == uuid.Nil {
		respondError(w, errors.InvalidInput("zone_id", "查询快照必须指定区域"))
		return
	}

	planDate := r.URL.Query().Get("plan_date")
	if planDate != "" {
		dayType := model.DayType(r.URL.Query().Get("day_type"))
		if !dayType.IsValid() {
			respondError(w, errors.New(errors.CodeInvalidDayType, "日期类型必须为 regular 或 holiday"))
			return
		}
		record, plan, err := h.distributions.Get(r.Context(), zoneID, dayType, planDate)
		if err != nil {
			respondError(w, errors.NotFound("分配快照", planDate).WithCause(err))
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"record": record, "plan": plan})
		return
	}

	filter := repository.DefaultListFilter()
	if dt := r.URL.Query().Get("day_type"); dt != "" {
		filter = filter.WithDayType(dt)
	}
	if start, end := r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"); start != "" || end != "" {
		filter = filter.WithDateRange(start, end)
	}

	records, err := h.distributions.ListByZone(r.Context(), zoneID, filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询快照列表失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"records": records, "total": len(records)})
}

// Export 计算排班计划并导出为xlsx工作簿
func (h *PlanHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	zoneID, appErr := queryUUID(r, "zone_id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	dayType := model.DayType(r.URL.Query().Get("day_type"))
	if zoneID == uuid.Nil || !dayType.IsValid() {
		respondError(w, errors.InvalidInput("query", "必须指定 zone_id 与合法的 day_type"))
		return
	}

	plan, buildErr := h.buildPlan(r, zoneID, dayType, nil)
	if buildErr != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		respondError(w, buildErr)
		return
	}

	filename := fmt.Sprintf("callplan_%s_%s.xlsx", zoneID.String()[:8], dayType)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := export.WritePlan(w, plan); err != nil {
		// 响应头已写出，只能记录错误
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		logger.Error().Err(err).Str("zone_id", zoneID.String()).Msg("导出工作簿失败")
		return
	}
	metrics.ExportsTotal.WithLabelValues("ok").Inc()
}

// buildPlan 加载区域数据并执行排班计算
func (h *PlanHandler) buildPlan(r *http.Request, zoneID uuid.UUID, dayType model.DayType, override *model.SystemParameters) (*model.Plan, *errors.AppError) {
	provinces, err := h.provinces.ListByZone(r.Context(), zoneID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询省份列表失败")
	}
	if len(provinces) == 0 {
		return nil, errors.New(errors.CodeNoWorkingProvince, "该区域下没有可用省份")
	}

	volumes, err := h.volumes.ListByZone(r.Context(), zoneID, dayType)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询话务量序列失败")
	}
	if len(volumes) == 0 {
		return nil, errors.New(errors.CodeEmptyVolumeSeries, "该区域在此日期类型下没有话务量数据")
	}

	params := model.SystemParameters{}
	if override != nil {
		params = *override
	} else {
		params, err = h.params.Get(r.Context())
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询系统参数失败")
		}
	}

	start := time.Now()
	plan := planner.BuildPlan(planner.Input{
		ZoneID:    zoneID,
		DayType:   dayType,
		Provinces: provinces,
		Volumes:   volumes,
		Params:    params,
	})
	duration := time.Since(start)

	assigned := 0
	for _, p := range plan.Periods {
		assigned += p.Assigned
	}
	metrics.RecordPlanComputation(string(dayType), assigned, plan.UnmetDemand, duration)

	logger.Info().
		Str("zone_id", zoneID.String()).
		Str("day_type", string(dayType)).
		Int("periods", len(plan.Periods)).
		Int("unmet", plan.UnmetDemand).
		Dur("duration", duration).
		Msg("排班计算完成")
	return plan, nil
}
