package serve

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/projecteru2/labflow/cmd/run"
	httpserver "github.com/projecteru2/labflow/internal/server/http"
	"github.com/projecteru2/labflow/pkg/log"
)

// Command .
func Command() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "serve the records and connections over http",
		Action: run.Run(serve),
	}
}

var signs = []os.Signal{
	syscall.SIGHUP,
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

func serve(c *cli.Context, rt *run.Runtime) error {
	logger := log.WithFunc("serve")

	dump, err := rt.Config.Dump()
	if err != nil {
		return err
	}
	logger.Debugf(c.Context, "config:\n%s", dump)

	if err := rt.Factory.CheckHealth(c.Context); err != nil {
		logger.Warnf(c.Context, "controller is unhealthy: %v", err)
	}

	srv, err := httpserver.Listen(rt.Config, rt.Engine, rt.Metrics)
	if err != nil {
		return err
	}
	logger.Infof(c.Context, "listening on %s", srv.Addr)

	go func() {
		defer logger.Warnf(c.Context, "signal handler exit")

		var signCh = make(chan os.Signal, 1)
		signal.Notify(signCh, signs...)
		defer signal.Stop(signCh)

		select {
		case sign := <-signCh:
			logger.Warnf(c.Context, "got sign %s to exit", sign)
			srv.Close()
		case <-srv.ExitCh():
		}
	}()

	return srv.Serve()
}
