package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/configs"
	"github.com/projecteru2/labflow/internal/metrics"
	"github.com/projecteru2/labflow/internal/server"
	"github.com/projecteru2/labflow/internal/service"
	"github.com/projecteru2/labflow/pkg/log"
)

// HTTPServer .
type HTTPServer struct {
	*server.Server

	httpServer      *http.Server
	gracefulTimeout time.Duration
	metr            *metrics.Metrics
}

var _ server.Serverable = (*HTTPServer)(nil)

// Listen .
func Listen(cfg *configs.Config, svc service.Service, metr *metrics.Metrics) (*HTTPServer, error) {
	base, err := server.Listen(cfg.HTTP.BindAddr, svc)
	if err != nil {
		return nil, err
	}

	srv := &HTTPServer{
		Server:          base,
		gracefulTimeout: cfg.HTTP.GracefulTimeout.Duration(),
		metr:            metr,
	}
	srv.httpServer = &http.Server{
		Handler:           newMux(svc, metr, cfg.Records.File),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, nil
}

func newMux(svc service.Service, metr *metrics.Metrics, recordsFile string) http.Handler {
	var mux = http.NewServeMux()
	mux.Handle("/metrics", metr.Handler())
	mux.Handle("/", newAPIHandler(svc, recordsFile))
	return mux
}

// Serve blocks until Close is called or the listener fails.
func (s *HTTPServer) Serve() error {
	logger := log.WithFunc("httpserver.Serve").WithField("addr", s.Addr)
	defer func() {
		logger.Warnf(context.TODO(), "main loop %p exit", s)
		s.Close()
	}()

	var errCh = make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(s.Listener)
	}()
	logger.Infof(context.TODO(), "serving")

	select {
	case <-s.Exit.Ch:
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "")
	}
}

// Close .
func (s *HTTPServer) Close() {
	s.Exit.Do(func() {
		close(s.Exit.Ch)

		ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.WithFunc("httpserver.Close").Errorf(ctx, err, "failed to shutdown")
			s.metr.IncrError("http_shutdown")
		}
	})
}

// ExitCh .
func (s *HTTPServer) ExitCh() chan struct{} {
	return s.Exit.Ch
}
