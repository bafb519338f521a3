package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/callplan/callplan/internal/repository"
	"github.com/callplan/callplan/pkg/errors"
	"github.com/callplan/callplan/pkg/model"
)

// CallVolumeHandler 话务量管理处理器
type CallVolumeHandler struct {
	volumes *repository.CallVolumeRepository
	zones   *repository.ZoneRepository
}

// NewCallVolumeHandler 创建话务量处理器
func NewCallVolumeHandler(volumes *repository.CallVolumeRepository, zones *repository.ZoneRepository) *CallVolumeHandler {
	return &CallVolumeHandler{volumes: volumes, zones: zones}
}

// VolumePointInput 单个小时的话务量输入
type VolumePointInput struct {
	Hour  int `json:"hour"`
	Calls int `json:"calls"`
}

// VolumeSeriesRequest 话务量批量写入请求
type VolumeSeriesRequest struct {
	ZoneID  string             `json:"zone_id"`
	DayType string             `json:"day_type"`
	Replace bool               `json:"replace,omitempty"` // 为真时先清空该序列
	Points  []VolumePointInput `json:"points"`
}

// VolumeSeriesResponse 话务量序列响应
type VolumeSeriesResponse struct {
	ZoneID  uuid.UUID                `json:"zone_id"`
	DayType model.DayType            `json:"day_type"`
	Points  []*model.CallVolumePoint `json:"points"`
}

// Serve 处理 /api/v1/callvolumes 请求
func (h *CallVolumeHandler) Serve(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPut:
		h.upsert(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的请求方法"))
	}
}

func (h *CallVolumeHandler) list(w http.ResponseWriter, r *http.Request) {
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

	points, err := h.volumes.ListByZone(r.Context(), zoneID, dayType)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询话务量序列失败"))
		return
	}
	respondJSON(w, http.StatusOK, VolumeSeriesResponse{ZoneID: zoneID, DayType: dayType, Points: points})
}

func (h *CallVolumeHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req VolumeSeriesRequest
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
	if len(req.Points) == 0 {
		respondError(w, errors.New(errors.CodeEmptyVolumeSeries, "话务量序列不能为空"))
		return
	}

	ve := &errors.ValidationErrors{}
	seen := make(map[int]bool, len(req.Points))
	for _, p := range req.Points {
		if p.Hour < 0 || p.Hour > 23 {
			ve.Add("hour", "小时必须在0到23之间")
		}
		if p.Calls < 0 {
			ve.Add("calls", "话务量不能为负数")
		}
		if seen[p.Hour] {
			ve.Add("hour", "同一小时出现多次")
		}
		seen[p.Hour] = true
	}
	if ve.HasErrors() {
		respondError(w, ve.ToAppError())
		return
	}

	if _, err := h.zones.GetByID(r.Context(), zoneID); err != nil {
		respondError(w, errors.NotFound("区域", req.ZoneID).WithCause(err))
		return
	}

	if req.Replace {
		if err := h.volumes.DeleteByZone(r.Context(), zoneID, dayType); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "清空话务量序列失败"))
			return
		}
	}

	points := make([]*model.CallVolumePoint, 0, len(req.Points))
	for _, p := range req.Points {
		points = append(points, &model.CallVolumePoint{
			ZoneID:  zoneID,
			DayType: dayType,
			Hour:    p.Hour,
			Calls:   p.Calls,
		})
	}
	if err := h.volumes.UpsertSeries(r.Context(), points); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "写入话务量序列失败"))
		return
	}

	respondJSON(w, http.StatusOK, VolumeSeriesResponse{ZoneID: zoneID, DayType: dayType, Points: points})
}
