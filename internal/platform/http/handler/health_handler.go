// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// SnapshotInfo returns the served snapshot version and its security count.
// The version is "" before the first load.
type SnapshotInfo func() (version string, securities int)

// Readiness は /readyz を処理します。検索スナップショットがロードされるまで 503 を返します。
func Readiness(info SnapshotInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		version, n := info()
		if version == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "snapshot": version, "securities": n})
	}
}
