// Package middleware はリクエストID付与とアクセスログの Gin ミドルウェアを提供します。
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// HeaderRequestID はリクエストIDを伝播するヘッダー名です。
	HeaderRequestID = "X-Request-ID"
	// ContextRequestID は gin.Context に保存するキーです。
	ContextRequestID = "requestID"

	maxRequestIDLen = 128
)

// RequestID はクライアントから受け取った X-Request-ID を引き継ぎ、なければ UUID を発行します。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the request ID stored by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}

// AccessLog はリクエストごとに1行のアクセスログを出力します。
// 5xx は Error、4xx は Warn、それ以外は Info で出力します。
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", status),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
