// Package http は外部カタログAPI向けの HTTP クライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultIdlePerHost  = 8
	dialTimeout         = 5 * time.Second
	tlsHandshakeTimeout = 5 * time.Second
)

// ClientConfig は NewHTTPClient の設定です。ゼロ値の項目はデフォルトを使います。
type ClientConfig struct {
	Timeout time.Duration // リクエスト全体のタイムアウト
	// IdleConnsPerHost は同一ホストに保持するアイドル接続数です（net/http のデフォルトは 2）。
	IdleConnsPerHost int
}

// NewHTTPClient はカタログ取得用に設定されたHTTPクライアントを作成します。
// http.DefaultClient はタイムアウトを持たないため使用しません。
func NewHTTPClient(cfg ClientConfig) *http.Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.IdleConnsPerHost <= 0 {
		cfg.IdleConnsPerHost = defaultIdlePerHost
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        4 * cfg.IdleConnsPerHost,
		MaxIdleConnsPerHost: cfg.IdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
	}
	return &http.Client{Timeout: cfg.Timeout, Transport: t}
}
