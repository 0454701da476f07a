package transport

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"toolscout/internal/domain"
)

// RunStreamableHTTP serves MCP over streamable HTTP until ctx is done.
func (s *Server) RunStreamableHTTP(ctx context.Context, cfg domain.TransportConfig) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{JSONResponse: cfg.JSONResponse})

	path := cfg.HTTPPath
	if path == "" {
		path = domain.DefaultHTTPPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, bearerAuth(cfg.HTTPToken, handler))

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("serving MCP on streamable HTTP",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("path", path))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return domain.Wrap(domain.CodeUnavailable, "transport.RunStreamableHTTP", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", zap.Error(err))
			return err
		}
		s.logger.Info("http server stopped")
		return nil
	}
}

// bearerAuth enforces a static bearer token when one is configured.
func bearerAuth(token string, next http.Handler) http.Handler {
	if strings.TrimSpace(token) == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
