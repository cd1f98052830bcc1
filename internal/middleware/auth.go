package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskvault/backend/api/transport"
	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/internal/auth"
)

// UserIDKey is the request-scoped key under which the resolved user id is
// stored for downstream handlers.
const UserIDKey = "auth_user_id"

// BearerAuth resolves the caller's identity from the Authorization header.
// A missing, malformed or invalid token ends the request with 401 before any
// handler or store is touched; the response never says which check failed.
func BearerAuth(tokens *auth.TokenService, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				reject(ctx)
				return
			}

			userID, ok := tokens.Validate(tokenString, time.Now())
			if !ok {
				logger.Warn("rejected bearer token", zap.String("path", string(ctx.Path())))
				reject(ctx)
				return
			}

			ctx.SetUserValue(UserIDKey, userID)
			next(ctx)
		}
	}
}

// ResolveUserID extracts the user id stored by BearerAuth.
func ResolveUserID(ctx *fasthttp.RequestCtx) (int64, bool) {
	userID, ok := ctx.UserValue(UserIDKey).(int64)
	return userID, ok
}

func reject(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), domain.ErrUnauthenticated.Message, nil))
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
