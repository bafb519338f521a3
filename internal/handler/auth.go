package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/callplan/callplan/internal/security"
	"github.com/callplan/callplan/pkg/errors"
	"github.com/callplan/callplan/pkg/logger"
)

// AuthHandler 管理员登录处理器
type AuthHandler struct {
	credentials *security.CredentialStore
	tokens      *security.TokenManager
	limiter     *security.RateLimiter
}

// NewAuthHandler 创建登录处理器。登录接口单独限流以抵御口令爆破。
func NewAuthHandler(credentials *security.CredentialStore, tokens *security.TokenManager) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		tokens:      tokens,
		limiter:     security.NewRateLimiter(10, time.Minute),
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"` // 秒
}

// Login 校验管理员凭据并签发JWT
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	clientIP := clientAddr(r)
	if !h.limiter.Allow(clientIP) {
		logger.Warn().Str("ip", clientIP).Msg("登录请求触发限流")
		respondError(w, errors.New(errors.CodeRateLimited, "登录尝试过于频繁，请稍后重试"))
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	ve := &errors.ValidationErrors{}
	if req.Username == "" {
		ve.Add("username", "用户名不能为空")
	}
	if req.Password == "" {
		ve.Add("password", "密码不能为空")
	}
	if ve.HasErrors() {
		respondError(w, ve.ToAppError())
		return
	}

	if !h.credentials.Verify(req.Username, req.Password) {
		logger.Warn().Str("username", req.Username).Str("ip", clientIP).Msg("登录凭据校验失败")
		respondError(w, errors.New(errors.CodeUnauthorized, "用户名或密码错误"))
		return
	}

	token, err := h.tokens.Issue(req.Username, req.Username)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInternal, "签发令牌失败"))
		return
	}

	logger.Info().Str("username", req.Username).Msg("管理员登录成功")
	respondJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(h.tokens.TTL().Seconds()),
	})
}

// clientAddr 取请求来源IP（去掉端口）
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
