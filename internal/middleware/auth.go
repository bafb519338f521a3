// Package middleware 提供HTTP中间件
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/callplan/callplan/internal/security"
	"github.com/callplan/callplan/pkg/logger"
)

// AuthConfig 认证配置
type AuthConfig struct {
	TokenManager *security.TokenManager
	SkipPaths    []string // 跳过认证的路径
}

// AuthMiddleware 认证中间件：验证 Bearer JWT 并将管理员账号写入上下文
func AuthMiddleware(config *AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 检查是否跳过认证
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// 提取令牌
			token := security.ExtractToken(r)
			if token == "" {
				http.Error(w, `{"error":"missing_token","message":"访问令牌未提供"}`, http.StatusUnauthorized)
				return
			}

			// 验证令牌
			claims, err := config.TokenManager.Validate(token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("令牌验证失败")
				http.Error(w, `{"error":"invalid_token","message":"无效的访问令牌"}`, http.StatusUnauthorized)
				return
			}

			// 将管理员账号添加到上下文
			ctx := context.WithValue(r.Context(), "admin_user", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext 从上下文取出管理员账号
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value("admin_user").(string)
	return user, ok
}
