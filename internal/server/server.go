package server

import (
	"net"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/internal/service"
)

// Serverable .
type Serverable interface {
	Serve() error
	Close()
	ExitCh() chan struct{}
}

// Server .
type Server struct {
	Addr     string
	Listener net.Listener
	Service  service.Service
	Exit     struct {
		sync.Once
		Ch chan struct{}
	}
}

// Listen .
func Listen(addr string, svc service.Service) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", addr)
	}

	srv := &Server{
		Addr:     lis.Addr().String(),
		Listener: lis,
		Service:  svc,
	}
	srv.Exit.Ch = make(chan struct{}, 1)
	return srv, nil
}
