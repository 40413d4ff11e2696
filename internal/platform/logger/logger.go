// Package logger はアプリケーション共通の zap ロガーを構築します。
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger は指定されたレベルとフォーマットで zap ロガーを作成します。
//
//   - level: "debug" / "info" / "warn" / "error"（不明な値は info）
//   - format: "console" は開発用の人間向け出力、それ以外は JSON
//   - service: 空でなければ service_name フィールドとして付与
func NewLogger(level, format, service string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if service != "" {
		l = l.With(zap.String("service_name", service))
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		l = l.With(zap.String("hostname", host))
	}
	return l, nil
}

// ParseLevel converts a level name to a zapcore.Level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
