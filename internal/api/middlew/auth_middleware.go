package middlew

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/service"
	"gw-transaction-batch/pkg/response"
)

var tokenErrors = []response.ErrorMapping{
	{Err: custom_err.ErrTokenExpired, Status: http.StatusUnauthorized, Code: "token_expired", Message: "Token has expired"},
	{Err: custom_err.ErrTokenNotActive, Status: http.StatusUnauthorized, Code: "token_not_active", Message: "Token not yet active"},
	{Err: custom_err.ErrInvalidToken, Status: http.StatusUnauthorized, Code: "invalid_token", Message: "Invalid token"},
}

// RequireAuth пропускает только запросы с действующим токеном оператора
func RequireAuth(authService service.Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := GetLogger(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.WriteJSONError(w, log, http.StatusUnauthorized, "unauthorized", "Authorization header is required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("invalid authorization header format")
				response.WriteJSONError(w, log, http.StatusUnauthorized, "unauthorized", "Invalid authorization header format")
				return
			}

			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				response.WriteMappedError(w, log, err, tokenErrors)
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey, claims.Subject)

			loggerWithOperator := log.With(slog.String("operator", claims.Subject))
			ctx = context.WithValue(ctx, loggerKey, loggerWithOperator)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOperator возвращает оператора из токена, пустая строка если авторизация выключена
func GetOperator(ctx context.Context) string {
	operator, _ := ctx.Value(operatorKey).(string)
	return operator
}
