package httpapi

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
	"github.com/jakechorley/weekend-duty/pkg/core/roster"
)

// AccessKeyHeader carries the caller's access key
const AccessKeyHeader = "X-Access-Key"

type contextKey string

const memberKey contextKey = "member"

// accessKeyAuth resolves the access key to a team member and stores it in the request context
func accessKeyAuth(directory *roster.Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(AccessKeyHeader)
			if key == "" {
				respondMessage(w, http.StatusUnauthorized, "access key required")
				return
			}

			member, err := directory.ValidateAccessKey(key)
			if err != nil {
				respondMessage(w, http.StatusUnauthorized, "invalid access key")
				return
			}

			ctx := context.WithValue(r.Context(), memberKey, *member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// memberFrom returns the authenticated caller
func memberFrom(ctx context.Context) (model.TeamMember, bool) {
	member, ok := ctx.Value(memberKey).(model.TeamMember)
	return member, ok
}

// requestLogger logs one line per request, at error level for server errors
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			}

			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("Request failed", fields...)
			case status >= http.StatusBadRequest:
				logger.Info("Request rejected", fields...)
			default:
				logger.Debug("Request served", fields...)
			}
		})
	}
}
