package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/callplan/callplan/internal/repository"
	"github.com/callplan/callplan/pkg/errors"
	"github.com/callplan/callplan/pkg/model"
)

// ProvinceHandler 省份管理处理器
type ProvinceHandler struct {
	provinces *repository.ProvinceRepository
	zones     *repository.ZoneRepository
}

// NewProvinceHandler 创建省份处理器
func NewProvinceHandler(provinces *repository.ProvinceRepository, zones *repository.ZoneRepository) *ProvinceHandler {
	return &ProvinceHandler{provinces: provinces, zones: zones}
}

// ProvinceRequest 省份创建/更新请求
type ProvinceRequest struct {
	ZoneID        string `json:"zone_id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	WorkStartTime int    `json:"work_start_time"`
	WorkEndTime   int    `json:"work_end_time"`
	Operators     int    `json:"operators"`
}

// ProvinceListResponse 省份列表响应
type ProvinceListResponse struct {
	Provinces []*model.Province `json:"provinces"`
	Total     int               `json:"total"`
}

// Collection 处理 /api/v1/provinces 集合请求
func (h *ProvinceHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的请求方法"))
	}
}

// Item 处理 /api/v1/provinces/{id} 单项请求
func (h *ProvinceHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/api/v1/provinces")
	if !ok {
		respondError(w, errors.New(errors.CodeInvalidInput, "无效的省份ID格式"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的请求方法"))
	}
}

func (h *ProvinceHandler) list(w http.ResponseWriter, r *http.Request) {
	zoneID, appErr := queryUUID(r, "zone_id")
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	if zoneID == uuid.Nil {
		respondError(w, errors.InvalidInput("zone_id", "查询省份列表必须指定区域"))
		return
	}

	provinces, err := h.provinces.ListByZone(r.Context(), zoneID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询省份列表失败"))
		return
	}
	respondJSON(w, http.StatusOK, ProvinceListResponse{Provinces: provinces, Total: len(provinces)})
}

func (h *ProvinceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req ProvinceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	zoneID, appErr := validateProvinceRequest(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	// 省份必须挂在已存在的区域下
	if _, err := h.zones.GetByID(r.Context(), zoneID); err != nil {
		respondError(w, errors.NotFound("区域", req.ZoneID).WithCause(err))
		return
	}

	province := &model.Province{
		ZoneID:        zoneID,
		Name:          req.Name,
		Code:          req.Code,
		WorkStartTime: req.WorkStartTime,
		WorkEndTime:   req.WorkEndTime,
		Operators:     req.Operators,
	}
	if err := h.provinces.Create(r.Context(), province); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建省份失败"))
		return
	}
	respondJSON(w, http.StatusCreated, province)
}

func (h *ProvinceHandler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	province, err := h.provinces.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.NotFound("省份", id.String()).WithCause(err))
		return
	}
	respondJSON(w, http.StatusOK, province)
}

func (h *ProvinceHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ProvinceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	zoneID, appErr := validateProvinceRequest(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	province, err := h.provinces.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.NotFound("省份", id.String()).WithCause(err))
		return
	}

	province.ZoneID = zoneID
	province.Name = req.Name
	province.Code = req.Code
	province.WorkStartTime = req.WorkStartTime
	province.WorkEndTime = req.WorkEndTime
	province.Operators = req.Operators

	if err := h.provinces.Update(r.Context(), province); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新省份失败"))
		return
	}
	respondJSON(w, http.StatusOK, province)
}

func (h *ProvinceHandler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.provinces.Delete(r.Context(), id); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除省份失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id})
}

// validateProvinceRequest 校验省份请求并解析区域ID。
// 工作时段为整点小时，(0,24) 表示全天；起始须早于结束。
func validateProvinceRequest(req *ProvinceRequest) (uuid.UUID, *errors.AppError) {
	ve := &errors.ValidationErrors{}
	if req.Name == "" {
		ve.Add("name", "省份名称不能为空")
	}
	if req.ZoneID == "" {
		ve.Add("zone_id", "区域ID不能为空")
	}
	if req.Operators < 0 {
		ve.Add("operators", "坐席编制不能为负数")
	}
	if req.WorkStartTime < 0 || req.WorkStartTime > 24 {
		ve.Add("work_start_time", "工作开始时间必须在0到24之间")
	}
	if req.WorkEndTime < 0 || req.WorkEndTime > 24 {
		ve.Add("work_end_time", "工作结束时间必须在0到24之间")
	}
	if ve.HasErrors() {
		return uuid.Nil, ve.ToAppError()
	}

	if req.WorkStartTime >= req.WorkEndTime {
		return uuid.Nil, errors.InvalidTimeWindow(req.WorkStartTime, req.WorkEndTime)
	}

	zoneID, err := uuid.Parse(req.ZoneID)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的区域ID格式")
	}
	return zoneID, nil
}
