package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"输入无效", New(CodeInvalidInput, "bad"), http.StatusBadRequest},
		{"未授权", New(CodeUnauthorized, "no"), http.StatusUnauthorized},
		{"需求超出编制", CapacityExceeded(30, 20), http.StatusUnprocessableEntity},
		{"限流", New(CodeRateLimited, "slow down"), http.StatusTooManyRequests},
		{"包装后仍可识别", fmt.Errorf("outer: %w", New(CodeNotFound, "gone")), http.StatusNotFound},
		{"普通错误按内部错误", stderrors.New("plain"), http.StatusInternalServerError},
		{"状态码未设置按内部错误", &AppError{Code: CodeUnknown, Message: "raw"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetHTTPStatus(tt.err); got != tt.want {
				t.Errorf("GetHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCapacityExceeded(t *testing.T) {
	err := CapacityExceeded(30, 20)
	if err.Code != CodeCapacityExceeded {
		t.Errorf("Code = %s, want %s", err.Code, CodeCapacityExceeded)
	}
	if !Is(err, CodeCapacityExceeded) {
		t.Error("Is() should match CodeCapacityExceeded")
	}
	if got := GetCode(fmt.Errorf("wrap: %w", err)); got != CodeCapacityExceeded {
		t.Errorf("GetCode() = %s, want %s", got, CodeCapacityExceeded)
	}
}
