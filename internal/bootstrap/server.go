// 文件路径: internal/bootstrap/server.go
package bootstrap

import (
	"net/http"
	"time"
)

// NewHTTPServer constructs a baseline http.Server with conservative defaults.
// WriteTimeout stays zero so websocket streams are not cut off.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}
}
