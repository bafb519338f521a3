package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/callplan/callplan/internal/repository"
	"github.com/callplan/callplan/pkg/errors"
	"github.com/callplan/callplan/pkg/model"
)

// ZoneHandler 区域管理处理器
type ZoneHandler struct {
	zones *repository.ZoneRepository
}

// NewZoneHandler 创建区域处理器
func NewZoneHandler(zones *repository.ZoneRepository) *ZoneHandler {
	return &ZoneHandler{zones: zones}
}

// ZoneRequest 区域创建/更新请求
type ZoneRequest struct {
	Name     string        `json:"name"`
	Code     string        `json:"code"`
	Settings model.JSONMap `json:"settings,omitempty"`
	IsActive *bool         `json:"is_active,omitempty"`
}

// ZoneListResponse 区域列表响应
type ZoneListResponse struct {
	Zones []*model.Zone `json:"zones"`
	Total int           `json:"total"`
}

// Collection 处理 /api/v1/zones 集合请求
func (h *ZoneHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的请求方法"))
	}
}

// Item 处理 /api/v1/zones/{id} 单项请求
func (h *ZoneHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/api/v1/zones")
	if !ok {
		respondError(w, errors.New(errors.CodeInvalidInput, "无效的区域ID格式"))
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

func (h *ZoneHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := repository.DefaultListFilter()
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filter = filter.WithLimit(limit)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter = filter.WithOffset(offset)
		}
	}
	filter.Search = r.URL.Query().Get("search")

	zones, total, err := h.zones.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询区域列表失败"))
		return
	}
	respondJSON(w, http.StatusOK, ZoneListResponse{Zones: zones, Total: total})
}

func (h *ZoneHandler) create(w http.ResponseWriter, r *http.Request) {
	var req ZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if appErr := validateZoneRequest(&req); appErr != nil {
		respondError(w, appErr)
		return
	}

	zone := &model.Zone{
		Name:     req.Name,
		Code:     req.Code,
		Settings: req.Settings,
		IsActive: true,
	}
	if req.IsActive != nil {
		zone.IsActive = *req.IsActive
	}

	if err := h.zones.Create(r.Context(), zone); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建区域失败"))
		return
	}
	respondJSON(w, http.StatusCreated, zone)
}

func (h *ZoneHandler) get(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	zone, err := h.zones.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.NotFound("区域", id.String()).WithCause(err))
		return
	}
	respondJSON(w, http.StatusOK, zone)
}

func (h *ZoneHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if appErr := validateZoneRequest(&req); appErr != nil {
		respondError(w, appErr)
		return
	}

	zone, err := h.zones.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.NotFound("区域", id.String()).WithCause(err))
		return
	}

	zone.Name = req.Name
	zone.Code = req.Code
	if req.Settings != nil {
		zone.Settings = req.Settings
	}
	if req.IsActive != nil {
		zone.IsActive = *req.IsActive
	}

	if err := h.zones.Update(r.Context(), zone); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新区域失败"))
		return
	}
	respondJSON(w, http.StatusOK, zone)
}

func (h *ZoneHandler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.zones.Delete(r.Context(), id); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除区域失败"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true, "id": id})
}

// validateZoneRequest 校验区域请求
func validateZoneRequest(req *ZoneRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}
	if req.Name == "" {
		ve.Add("name", "区域名称不能为空")
	}
	if req.Code == "" {
		ve.Add("code", "区域编码不能为空")
	}
	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}
