package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/response"
)

const headerRequestID = "X-Request-ID"

// slowRequest 超过该耗时记 warn
const slowRequest = 3 * time.Second

// RequestLogger 请求日志
//
// 每个请求分配 X-Request-ID（客户端传入则沿用），
// 并把带 request_id 的 logger 放进 Request.Context，用例层用 logger.FromContext 取出。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(headerRequestID, requestID)

		l := log.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), l))

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		event := l.Info()
		switch {
		case status >= 500:
			event = l.Error()
		case latency > slowRequest:
			event = l.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP请求")
	}
}

// Recovery panic 转为 50000 响应
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.FromContext(c.Request.Context()).Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				response.Abort(c, apperrors.ErrInternal)
			}
		}()
		c.Next()
	}
}
