package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// MetricsServer exposes a metrics handler over HTTP.
type MetricsServer struct {
	srv *http.Server
	ln  net.Listener
}

// StartMetricsServer listens on addr and serves handler at /metrics in the
// background. Use Addr for the bound address when addr has port 0.
func StartMetricsServer(addr string, handler http.Handler) (*MetricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	s := &MetricsServer{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server stopped", "error", err)
		}
	}()
	slog.Info("Starting metrics server", "addr", ln.Addr().String())
	return s, nil
}

func (s *MetricsServer) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server, waiting for in-flight scrapes until ctx ends.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
