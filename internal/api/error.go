// Package api は HTTP レスポンスの共通エンベロープとエラーコードを定義します。
package api

import "github.com/gin-gonic/gin"

// ErrorCode はクライアントに返すエラーコードです。
// 先頭2文字がリソース（CO: 共通、ST: 銘柄）、後半2桁が連番です。
type ErrorCode string

const (
	CodeInternal          ErrorCode = "CO00"
	CodeStockNotFound     ErrorCode = "ST00"
	CodeInvalidQuery      ErrorCode = "ST01"
	CodeInvalidPagination ErrorCode = "ST02"
	CodeIndexUnavailable  ErrorCode = "ST03"
)

// ErrorResponse はエラー時のレスポンスボディです。
type ErrorResponse struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// DataResponse は成功時のレスポンスボディです。
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// AbortWithError はエラーボディを書き込み、後続のハンドラーを中断します。
func AbortWithError(c *gin.Context, status int, code ErrorCode, message string, details map[string]any) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message, Details: details})
}
