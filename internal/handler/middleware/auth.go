package middleware

import (
	"github.com/gin-gonic/gin"

	"vault-core/internal/handler/response"
	"vault-core/pkg/errno"
	"vault-core/pkg/principal"
)

// PrincipalHeader 调用者主体标识的请求头。
// 身份认证在网关层完成, 这里信任网关透传的主体。
const PrincipalHeader = "X-Vault-Principal"

const principalKey = "caller_principal"

// CallerIdentity 解析调用者主体并放进请求上下文。
// 缺失的请求头解析为匿名主体, 由各业务操作自行拒绝
// (查询类接口未来可能对匿名开放, 所以不在这里一刀切)。
func CallerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := principal.Parse(c.GetHeader(PrincipalHeader))
		if err != nil {
			response.Error(c, errno.ErrMalformedIdentifier)
			c.Abort()
			return
		}
		c.Set(principalKey, caller)
		c.Next()
	}
}

// Caller 取出 CallerIdentity 解析的主体。
func Caller(c *gin.Context) principal.ID {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(principal.ID); ok {
			return p
		}
	}
	return principal.Anonymous
}
