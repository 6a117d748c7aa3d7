package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/veliashev/shopcore/internal/core/domain"
	"github.com/veliashev/shopcore/internal/core/port"
)

const authHeaderKey = "Authorization"
const authType = "Bearer"
const userPayloadKey = "user_payload"

func authCheck(tokenService port.TokenService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.Request.Header.Get(authHeaderKey)
		if len(header) == 0 {
			handleAbort(ctx, domain.ErrEmptyAuthorizationHeader)
			return
		}

		words := strings.Split(header, " ")
		if len(words) != 2 {
			handleAbort(ctx, domain.ErrInvalidAuthorizationHeader)
			return
		}
		if words[0] != authType {
			handleAbort(ctx, domain.ErrInvalidAuthorizationType)
			return
		}
		token := words[1]
		payload, err := tokenService.VerifyToken(token)
		if err != nil {
			handleAbort(ctx, domain.ErrInvalidToken)
			return
		}

		ctx.Set(userPayloadKey, payload)

		ctx.Next()
	}
}

func getAuthPayload(ctx *gin.Context) *port.TokenPayload {
	return ctx.MustGet(userPayloadKey).(*port.TokenPayload)
}

// permissionCheck gates a mutating route on one workspace action. Runs
// after authCheck, so the payload is always present.
func permissionCheck(permissions port.PermissionService, action string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		workspaceID, err := workspaceParam(ctx)
		if err != nil {
			handleAbort(ctx, domain.ErrBadRequest)
			return
		}
		if !permissions.HasPermission(getAuthPayload(ctx), workspaceID, action) {
			handleAbort(ctx, domain.ErrForbidden)
			return
		}
		ctx.Next()
	}
}
