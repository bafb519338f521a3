package handler

import (
	"encoding/json"
	"net/http"

	"github.com/callplan/callplan/internal/repository"
	"github.com/callplan/callplan/pkg/errors"
	"github.com/callplan/callplan/pkg/model"
)

// ParametersHandler 全局参数处理器
type ParametersHandler struct {
	params *repository.ParametersRepository
}

// NewParametersHandler 创建参数处理器
func NewParametersHandler(params *repository.ParametersRepository) *ParametersHandler {
	return &ParametersHandler{params: params}
}

// Serve 处理 /api/v1/parameters 请求
func (h *ParametersHandler) Serve(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "不支持的请求方法"))
	}
}

func (h *ParametersHandler) get(w http.ResponseWriter, r *http.Request) {
	params, err := h.params.Get(r.Context())
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询系统参数失败"))
		return
	}
	respondJSON(w, http.StatusOK, params)
}

func (h *ParametersHandler) put(w http.ResponseWriter, r *http.Request) {
	var params model.SystemParameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	ve := &errors.ValidationErrors{}
	if params.AttendanceDuration <= 0 {
		ve.Add("attendance_duration", "出勤时长必须为正数")
	}
	if params.StandardBreakTime < 0 {
		ve.Add("standard_break_time", "标准休息时长不能为负数")
	}
	if params.AverageResponseRate < 0 {
		ve.Add("average_response_rate", "平均响应率不能为负数")
	}
	if ve.HasErrors() {
		respondError(w, ve.ToAppError())
		return
	}

	if err := h.params.Save(r.Context(), params); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存系统参数失败"))
		return
	}
	respondJSON(w, http.StatusOK, params)
}
